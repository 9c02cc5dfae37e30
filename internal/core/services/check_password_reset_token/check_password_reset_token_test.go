package checkpasswordresettoken

import (
	"context"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	uow "resetme/internal/core/domain/unit_of_work"
	"resetme/internal/core/domain/user"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	USER_ID = 7
	EMAIL   = "user@example.com"
	TOKEN   = "test-password-reset-token"
)

var NOW = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) *uow.FakeUnitOfWork {
	unitOfWork := uow.NewFakeUnitOfWork()
	unitOfWork.Context.UserRepository.Users = []user.User{{ID: USER_ID, Email: EMAIL}}
	_, err := unitOfWork.Context.TokenRepository.Issue(context.Background(), passwordreset.IssueInput{
		UserID:    USER_ID,
		Token:     TOKEN,
		CreatedAt: NOW,
		TTL:       time.Hour,
	})
	require.Nil(t, err)
	return unitOfWork
}

func TestCheckToken(t *testing.T) {
	cases := []struct {
		id      string
		token   passwordreset.Token
		at      time.Time
		used    bool
		isValid bool
	}{
		{id: "valid", token: TOKEN, at: NOW.Add(time.Minute), isValid: true},
		{id: "valid at expiration", token: TOKEN, at: NOW.Add(time.Hour), isValid: true},
		{id: "expired", token: TOKEN, at: NOW.Add(61 * time.Minute), isValid: false},
		{id: "used", token: TOKEN, at: NOW, used: true, isValid: false},
		{id: "unknown", token: "unknown", at: NOW, isValid: false},
		{id: "empty", token: "", at: NOW, isValid: false},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			ctx := context.Background()
			unitOfWork := setup(t)
			if testcase.used {
				require.Nil(t, unitOfWork.Context.TokenRepository.Consume(ctx, TOKEN))
			}
			before := unitOfWork.Context.TokenRepository.Snapshot()
			service := New(logging.NewFakeLogger(), unitOfWork, func() time.Time { return testcase.at })

			result, err := service.Run(ctx, Input{Token: testcase.token})

			require.Nil(t, err)
			require.Equal(t, testcase.isValid, result.IsValid)
			if testcase.isValid {
				require.Equal(t, c.Some[c.Email](EMAIL), result.Email)
			} else {
				require.False(t, result.Email.IsPresent)
			}
			require.Equal(t, before, unitOfWork.Context.TokenRepository.Snapshot())
			require.False(t, unitOfWork.Context.WasCommitCalled)
		})
	}
}

func TestCheckTokenOfMissingUser(t *testing.T) {
	unitOfWork := setup(t)
	unitOfWork.Context.UserRepository.Users = nil
	log := logging.NewFakeLogger()

	result, err := New(log, unitOfWork, func() time.Time { return NOW }).Run(context.Background(), Input{Token: TOKEN})

	require.Nil(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, 1, log.CountByLevel(logging.WARNING))
}

func TestCheckTokenStoreFailure(t *testing.T) {
	unitOfWork := setup(t)
	unitOfWork.Context.TokenRepository.ReturnError = true

	_, err := New(logging.NewFakeLogger(), unitOfWork, func() time.Time { return NOW }).Run(context.Background(), Input{Token: TOKEN})

	var persistenceErr *e.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	require.Equal(t, "lookupValid", persistenceErr.Op)
}
