package uow

import (
	"context"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
)

type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Users() user.UserRepository
	PasswordResetTokens() passwordreset.Repository
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
