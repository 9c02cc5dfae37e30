package passwordreset

import (
	"context"
	"errors"
	e "resetme/internal/core/domain/errors"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	"time"

	"github.com/jackc/pgx/v4"
)

const TOKEN_CONSTRAINT_NAME = "password_reset_token_token_idx"

type PgxRepository struct {
	db db.DBTX
}

func NewPgxRepository(dbtx db.DBTX) *PgxRepository {
	if dbtx == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxRepository{db: dbtx}
}

// Issue serializes concurrent issues for one user with a transaction-scoped
// advisory lock. When called inside a transaction it runs in a savepoint, so
// a token collision leaves the outer transaction usable.
func (r *PgxRepository) Issue(
	ctx context.Context,
	input passwordreset.IssueInput,
) (t passwordreset.ResetToken, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return t, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(input.UserID))
	if err != nil {
		return t, err
	}
	_, err = tx.Exec(ctx, `DELETE FROM password_reset_token WHERE user_id = $1`, int64(input.UserID))
	if err != nil {
		return t, err
	}

	row := tx.QueryRow(
		ctx,
		`INSERT INTO password_reset_token (user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING token, user_id, expires_at, used, created_at`,
		int64(input.UserID),
		string(input.Token),
		input.ExpiresAt(),
		input.CreatedAt,
	)
	t, err = scanToken(row)
	if db.IsUniqueViolation(err, TOKEN_CONSTRAINT_NAME) {
		return t, passwordreset.ErrTokenAlreadyExists
	}
	if err != nil {
		return t, err
	}

	err = tx.Commit(ctx)
	return t, err
}

func (r *PgxRepository) LookupValid(
	ctx context.Context,
	token passwordreset.Token,
	at time.Time,
) (userID user.ID, err error) {
	var id int64
	err = r.db.QueryRow(
		ctx,
		`SELECT user_id FROM password_reset_token
		WHERE token = $1 AND NOT used AND expires_at >= $2`,
		string(token),
		at,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return userID, passwordreset.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return userID, err
	}
	return user.ID(id), nil
}

func (r *PgxRepository) Consume(ctx context.Context, token passwordreset.Token) error {
	_, err := r.db.Exec(ctx, `UPDATE password_reset_token SET used = TRUE WHERE token = $1`, string(token))
	return err
}

// Claim relies on the row lock taken by UPDATE: a concurrent claim waits for
// the first one to finish and then no longer matches "NOT used".
func (r *PgxRepository) Claim(
	ctx context.Context,
	token passwordreset.Token,
	at time.Time,
) (userID user.ID, err error) {
	var id int64
	err = r.db.QueryRow(
		ctx,
		`UPDATE password_reset_token SET used = TRUE
		WHERE token = $1 AND NOT used AND expires_at >= $2
		RETURNING user_id`,
		string(token),
		at,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return userID, passwordreset.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return userID, err
	}
	return user.ID(id), nil
}

func (r *PgxRepository) PurgeExpiredOrUsed(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_token WHERE used OR expires_at < $1`, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (t passwordreset.ResetToken, err error) {
	var (
		token  string
		userID int64
	)
	err = row.Scan(&token, &userID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.Token = passwordreset.Token(token)
	t.UserID = user.ID(userID)
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}
