package passwordreset

import (
	"context"
	c "resetme/internal/core/domain/common"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	dbuser "resetme/internal/db/user"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	repo  *PgxRepository
	users *dbuser.PgxUserRepository
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.repo = NewPgxRepository(suite.pool)
	suite.users = dbuser.NewPgxRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxPasswordResetRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestIssue() {
	userID := s.createUser("a@test.test")

	token, err := s.repo.Issue(context.Background(), passwordreset.IssueInput{
		UserID:    userID,
		Token:     "token-a",
		CreatedAt: NOW,
		TTL:       time.Hour,
	})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(passwordreset.ResetToken{
		Token:     "token-a",
		UserID:    userID,
		ExpiresAt: NOW.Add(time.Hour),
		Used:      false,
		CreatedAt: NOW,
	}, token)
}

func (s *testSuite) TestIssueReplacesPreviousToken() {
	ctx := context.Background()
	userID := s.createUser("a@test.test")
	s.issue(userID, "first")
	s.issue(userID, "second")

	_, err := s.repo.LookupValid(ctx, "first", NOW)
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)
	found, err := s.repo.LookupValid(ctx, "second", NOW)
	s.Nil(err)
	s.Equal(userID, found)
	s.Equal(1, s.countTokens())
}

func (s *testSuite) TestIssueCollision() {
	ctx := context.Background()
	s.issue(s.createUser("a@test.test"), "taken")
	otherID := s.createUser("b@test.test")
	s.issue(otherID, "own")

	_, err := s.repo.Issue(ctx, passwordreset.IssueInput{UserID: otherID, Token: "taken", CreatedAt: NOW, TTL: time.Hour})

	s.ErrorIs(err, passwordreset.ErrTokenAlreadyExists)
	found, err := s.repo.LookupValid(ctx, "own", NOW)
	s.Nil(err)
	s.Equal(otherID, found)
}

func (s *testSuite) TestIssueCollisionInsideTransaction() {
	ctx := context.Background()
	s.issue(s.createUser("a@test.test"), "taken")
	otherID := s.createUser("b@test.test")

	tx, err := s.pool.Begin(ctx)
	s.Require().Nil(err)
	defer tx.Rollback(ctx)
	repo := NewPgxRepository(tx)

	_, err = repo.Issue(ctx, passwordreset.IssueInput{UserID: otherID, Token: "taken", CreatedAt: NOW, TTL: time.Hour})
	s.Require().ErrorIs(err, passwordreset.ErrTokenAlreadyExists)
	_, err = repo.Issue(ctx, passwordreset.IssueInput{UserID: otherID, Token: "fresh", CreatedAt: NOW, TTL: time.Hour})
	s.Require().Nil(err)
	s.Require().Nil(tx.Commit(ctx))

	found, err := s.repo.LookupValid(ctx, "fresh", NOW)
	s.Nil(err)
	s.Equal(otherID, found)
}

func (s *testSuite) TestConcurrentIssueLeavesOneToken() {
	userID := s.createUser("a@test.test")
	tokens := []passwordreset.Token{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}

	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token passwordreset.Token) {
			defer wg.Done()
			_, err := s.repo.Issue(context.Background(), passwordreset.IssueInput{
				UserID: userID, Token: token, CreatedAt: NOW, TTL: time.Hour,
			})
			s.Nil(err)
		}(token)
	}
	wg.Wait()

	s.Equal(1, s.countTokens())
}

func (s *testSuite) TestLookupValidBoundaries() {
	ctx := context.Background()
	userID := s.createUser("a@test.test")
	s.issue(userID, "token")

	_, err := s.repo.LookupValid(ctx, "token", NOW.Add(time.Hour))
	s.Nil(err)
	_, err = s.repo.LookupValid(ctx, "token", NOW.Add(61*time.Minute))
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)
	_, err = s.repo.LookupValid(ctx, "unknown", NOW)
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)
}

func (s *testSuite) TestConsumeIsIdempotent() {
	ctx := context.Background()
	s.issue(s.createUser("a@test.test"), "token")

	s.Nil(s.repo.Consume(ctx, "token"))
	s.Nil(s.repo.Consume(ctx, "token"))
	s.Nil(s.repo.Consume(ctx, "unknown"))

	_, err := s.repo.LookupValid(ctx, "token", NOW)
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)
}

func (s *testSuite) TestClaim() {
	ctx := context.Background()
	userID := s.createUser("a@test.test")
	s.issue(userID, "token")

	_, err := s.repo.Claim(ctx, "token", NOW.Add(61*time.Minute))
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)

	claimed, err := s.repo.Claim(ctx, "token", NOW)
	s.Nil(err)
	s.Equal(userID, claimed)

	_, err = s.repo.Claim(ctx, "token", NOW)
	s.ErrorIs(err, passwordreset.ErrInvalidOrExpiredToken)
}

func (s *testSuite) TestConcurrentClaimHasSingleWinner() {
	s.issue(s.createUser("a@test.test"), "token")

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.repo.Claim(context.Background(), "token", NOW); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, wins)
}

func (s *testSuite) TestPurgeExpiredOrUsed() {
	ctx := context.Background()
	for i, ttl := range []time.Duration{-time.Minute, -time.Hour, -time.Second} {
		s.issueWithTTL(s.createUser(string(rune('a'+i))+"@expired.test"), passwordreset.Token("expired-"+string(rune('a'+i))), ttl)
	}
	for i := 0; i < 2; i++ {
		token := passwordreset.Token("used-" + string(rune('a'+i)))
		s.issue(s.createUser(string(rune('a'+i))+"@used.test"), token)
		s.Require().Nil(s.repo.Consume(ctx, token))
	}
	s.issueWithTTL(s.createUser("a@valid.test"), "valid-a", time.Hour)
	s.issueWithTTL(s.createUser("b@valid.test"), "valid-b", 0)

	purged, err := s.repo.PurgeExpiredOrUsed(ctx, NOW)

	s.Require().Nil(err)
	s.EqualValues(5, purged)
	s.Equal(2, s.countTokens())
}

func (s *testSuite) createUser(email string) user.ID {
	u, err := s.users.Create(context.Background(), user.CreateUserInput{
		Email:        c.Email(email),
		PasswordHash: "hash",
		CreatedAt:    NOW,
	})
	s.Require().Nil(err)
	return u.ID
}

func (s *testSuite) issue(userID user.ID, token passwordreset.Token) {
	s.issueWithTTL(userID, token, time.Hour)
}

func (s *testSuite) issueWithTTL(userID user.ID, token passwordreset.Token, ttl time.Duration) {
	_, err := s.repo.Issue(context.Background(), passwordreset.IssueInput{
		UserID:    userID,
		Token:     token,
		CreatedAt: NOW,
		TTL:       ttl,
	})
	s.Require().Nil(err)
}

func (s *testSuite) countTokens() (count int) {
	err := s.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM password_reset_token`).Scan(&count)
	s.Require().Nil(err)
	return count
}
