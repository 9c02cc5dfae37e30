package resetpassword

import (
	"context"
	"errors"
	"fmt"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	uow "resetme/internal/core/domain/unit_of_work"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"time"
	"unicode/utf8"
)

type Input struct {
	Token       passwordreset.Token
	NewPassword user.RawPassword
}

type Result struct {
	Message string
}

type service struct {
	log               logging.Logger
	unitOfWork        uow.UnitOfWork
	passwordHasher    user.PasswordHasher
	notifier          passwordreset.Notifier
	events            passwordreset.EventPublisher
	minPasswordLength int
	now               func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher user.PasswordHasher,
	notifier passwordreset.Notifier,
	events passwordreset.EventPublisher,
	minPasswordLength int,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if events == nil {
		panic(e.NewNilArgumentError("events"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if minPasswordLength < 1 {
		minPasswordLength = passwordreset.DefaultMinPasswordLength
	}
	return &service{
		log:               log,
		unitOfWork:        unitOfWork,
		passwordHasher:    passwordHasher,
		notifier:          notifier,
		events:            events,
		minPasswordLength: minPasswordLength,
		now:               now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.Token == "" {
		return result, e.NewValidationError("token", "must not be empty")
	}
	if utf8.RuneCountInString(string(input.NewPassword)) < s.minPasswordLength {
		return result, e.NewValidationError(
			"password",
			fmt.Sprintf("must be at least %d characters long", s.minPasswordLength),
		)
	}

	passwordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "hashPassword"))
		return result, e.NewPersistenceError("hashPassword", err)
	}

	now := s.now()
	userID, err := s.setPassword(ctx, input.Token, passwordHash, now)
	if errors.Is(err, passwordreset.ErrInvalidOrExpiredToken) {
		s.log.Info(ctx, "Password reset with invalid or expired token.")
		return result, err
	}
	if err != nil {
		return result, err
	}
	s.log.Info(ctx, "New password has been successfully set.", logging.Entry("userID", userID))

	s.notify(ctx, userID)
	if err := s.events.Publish(ctx, passwordreset.Event{
		Type:   passwordreset.EventCompleted,
		UserID: userID,
		At:     now,
	}); err != nil {
		s.log.Warning(
			ctx,
			"Could not publish password reset event.",
			logging.Entry("userID", userID),
			logging.Entry("err", err),
		)
	}
	return Result{Message: passwordreset.PasswordChangedMessage}, nil
}

// setPassword claims the token and updates the credential in one transaction,
// so a failed update leaves the token usable.
func (s *service) setPassword(
	ctx context.Context,
	token passwordreset.Token,
	passwordHash user.PasswordHash,
	now time.Time,
) (userID user.ID, err error) {
	tx, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "begin"))
		return userID, e.NewPersistenceError("begin", err)
	}
	defer tx.Rollback(ctx)

	userID, err = tx.PasswordResetTokens().Claim(ctx, token, now)
	if errors.Is(err, passwordreset.ErrInvalidOrExpiredToken) {
		return userID, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "claim"))
		return userID, e.NewPersistenceError("claim", err)
	}

	err = tx.Users().SetPassword(ctx, userID, passwordHash)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", userID), logging.Entry("op", "setPassword"))
		return userID, e.NewPersistenceError("setPassword", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", userID), logging.Entry("op", "commit"))
		return userID, e.NewPersistenceError("commit", err)
	}
	return userID, nil
}

func (s *service) notify(ctx context.Context, userID user.ID) {
	tx, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		s.log.Warning(ctx, "Could not send password reset confirmation.", logging.Entry("userID", userID), logging.Entry("err", err))
		return
	}
	u, err := tx.Users().GetByID(ctx, userID)
	tx.Rollback(ctx)
	if err != nil {
		s.log.Warning(ctx, "Could not send password reset confirmation.", logging.Entry("userID", userID), logging.Entry("err", err))
		return
	}
	if err := s.notifier.SendResetConfirmation(ctx, u); err != nil {
		s.log.Warning(ctx, "Could not send password reset confirmation.", logging.Entry("userID", userID), logging.Entry("err", err))
	}
}
