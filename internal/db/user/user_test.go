package user

import (
	"context"
	c "resetme/internal/core/domain/common"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

const (
	EMAIL         = "test@test.test"
	PASSWORD_HASH = "test-password-hash"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PgxUserRepository
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.repo = NewPgxRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxUserRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestCreateSuccess() {
	u, err := suite.repo.Create(context.Background(), user.CreateUserInput{
		Name:         "Test",
		Email:        EMAIL,
		PasswordHash: PASSWORD_HASH,
		CreatedAt:    NOW,
	})

	assert := suite.Require()
	assert.Nil(err)
	assert.NotZero(u.ID)
	assert.Equal("Test", u.Name)
	assert.Equal(c.Email(EMAIL), u.Email)
	assert.Equal(user.PasswordHash(PASSWORD_HASH), u.PasswordHash)
	assert.Equal(NOW, u.CreatedAt)
}

func (suite *testSuite) TestEmailAlreadyExistsError() {
	input := user.CreateUserInput{Email: EMAIL, PasswordHash: PASSWORD_HASH, CreatedAt: NOW}

	_, err := suite.repo.Create(context.Background(), input)
	suite.Require().Nil(err)
	_, err = suite.repo.Create(context.Background(), input)

	suite.Require().ErrorIs(err, user.ErrEmailAlreadyExists)
}

func (s *testSuite) TestGetByEmailAndID() {
	ctx := context.Background()
	created := s.createUser()

	byEmail, err := s.repo.GetByEmail(ctx, EMAIL)
	s.Require().Nil(err)
	byID, err := s.repo.GetByID(ctx, created.ID)
	s.Require().Nil(err)

	s.Equal(created, byEmail)
	s.Equal(created, byID)
}

func (s *testSuite) TestGetReturnsErrorIfUserDoesNotExist() {
	ctx := context.Background()

	_, err := s.repo.GetByEmail(ctx, "nobody@test.test")
	s.ErrorIs(err, user.ErrUserDoesNotExist)
	_, err = s.repo.GetByID(ctx, 999)
	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestSetPassword() {
	ctx := context.Background()
	u := s.createUser()

	err := s.repo.SetPassword(ctx, u.ID, "new-hash")
	s.Require().Nil(err)

	updated, err := s.repo.GetByID(ctx, u.ID)
	s.Require().Nil(err)
	s.Equal(user.PasswordHash("new-hash"), updated.PasswordHash)
}

func (s *testSuite) TestSetPasswordReturnsErrorIfUserDoesNotExist() {
	err := s.repo.SetPassword(context.Background(), 999, "new-hash")

	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) createUser() user.User {
	u, err := s.repo.Create(context.Background(), user.CreateUserInput{
		Email:        EMAIL,
		PasswordHash: PASSWORD_HASH,
		CreatedAt:    NOW,
	})
	s.Require().Nil(err)
	return u
}
