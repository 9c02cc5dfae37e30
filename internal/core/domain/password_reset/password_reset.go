package passwordreset

import (
	"context"
	"resetme/internal/core/domain/user"
	"time"
)

const (
	DefaultTTL               = time.Hour
	DefaultMinPasswordLength = 8
	TokenLength              = 32

	// Attempts to issue a token when the generated value collides with an
	// existing one.
	MaxIssueAttempts = 3
)

const (
	RequestAcceptedMessage = "If the email exists in our system, you will receive a password reset link."
	PasswordChangedMessage = "Password has been reset successfully."
)

// Token is the opaque secret sent to the user. It is never logged.
type Token string

func (t Token) String() string {
	return "***"
}

type ResetToken struct {
	Token     Token
	UserID    user.ID
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsValidAt reports whether the token may still be consumed. A token is
// still valid at the exact expiration instant.
func (t ResetToken) IsValidAt(at time.Time) bool {
	return !t.Used && !at.After(t.ExpiresAt)
}

// IsPurgeableAt is the complement of IsValidAt.
func (t ResetToken) IsPurgeableAt(at time.Time) bool {
	return t.Used || t.ExpiresAt.Before(at)
}

type IssueInput struct {
	UserID    user.ID
	Token     Token
	CreatedAt time.Time
	TTL       time.Duration
}

func (i IssueInput) ExpiresAt() time.Time {
	return i.CreatedAt.Add(i.TTL)
}

type Repository interface {
	// Issue replaces every token of the user with a new one. It returns
	// ErrTokenAlreadyExists if the token value is taken.
	Issue(ctx context.Context, input IssueInput) (ResetToken, error)

	// LookupValid returns ErrInvalidOrExpiredToken for unknown, used and
	// expired tokens alike.
	LookupValid(ctx context.Context, token Token, at time.Time) (user.ID, error)

	// Consume marks the token as used. Consuming a used or unknown token is a
	// no-op.
	Consume(ctx context.Context, token Token) error

	// Claim marks the token as used only if it is valid at the given time and
	// returns its owner. Of concurrent claims on one token at most one wins.
	Claim(ctx context.Context, token Token, at time.Time) (user.ID, error)

	PurgeExpiredOrUsed(ctx context.Context, at time.Time) (int64, error)
}

type TokenGenerator interface {
	GenerateToken() Token
}

type Notifier interface {
	SendResetLink(ctx context.Context, u user.User, token Token) error
	SendResetConfirmation(ctx context.Context, u user.User) error
}
