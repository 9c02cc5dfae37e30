package uow

import (
	"context"
	"fmt"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
)

// FakeUnitOfWorkContext restores the state of its repositories on rollback
// unless it has been committed.
type FakeUnitOfWorkContext struct {
	UserRepository    *user.FakeUserRepository
	TokenRepository   *passwordreset.FakeRepository
	WasRollbackCalled bool
	WasCommitCalled   bool

	usersSnapshot  []user.User
	tokensSnapshot []passwordreset.ResetToken
}

func NewFakeUnitOfWorkContext(
	userRepository *user.FakeUserRepository,
	tokenRepository *passwordreset.FakeRepository,
) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		UserRepository:  userRepository,
		TokenRepository: tokenRepository,
	}
}

func (c *FakeUnitOfWorkContext) begin() {
	c.WasRollbackCalled = false
	c.WasCommitCalled = false
	c.usersSnapshot = c.UserRepository.Snapshot()
	c.tokensSnapshot = c.TokenRepository.Snapshot()
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.WasRollbackCalled = true
	if !c.WasCommitCalled {
		c.UserRepository.Restore(c.usersSnapshot)
		c.TokenRepository.Restore(c.tokensSnapshot)
	}
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	c.WasCommitCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Users() user.UserRepository {
	return c.UserRepository
}

func (c *FakeUnitOfWorkContext) PasswordResetTokens() passwordreset.Repository {
	return c.TokenRepository
}

type FakeUnitOfWork struct {
	Context          *FakeUnitOfWorkContext
	ReturnErrOnBegin bool
}

func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Context: NewFakeUnitOfWorkContext(
			user.NewFakeUserRepository(),
			passwordreset.NewFakeRepository(),
		),
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.ReturnErrOnBegin {
		return nil, fmt.Errorf("could not begin transaction")
	}
	u.Context.begin()
	return u.Context, nil
}
