package checkpasswordresettoken

import (
	"context"
	"errors"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	uow "resetme/internal/core/domain/unit_of_work"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	"time"
)

type Input struct {
	Token passwordreset.Token
}

type Result struct {
	IsValid bool
	Email   c.Optional[c.Email]
}

func invalid() Result {
	return Result{IsValid: false, Email: c.None[c.Email]()}
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, unitOfWork: unitOfWork, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.Token == "" {
		return invalid(), nil
	}

	tx, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "begin"))
		return result, e.NewPersistenceError("begin", err)
	}
	defer tx.Rollback(ctx)

	userID, err := tx.PasswordResetTokens().LookupValid(ctx, input.Token, s.now())
	if errors.Is(err, passwordreset.ErrInvalidOrExpiredToken) {
		return invalid(), nil
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "lookupValid"))
		return result, e.NewPersistenceError("lookupValid", err)
	}

	u, err := tx.Users().GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Warning(ctx, "Valid password reset token refers to a missing user.", logging.Entry("userID", userID))
		return invalid(), nil
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", userID), logging.Entry("op", "getUserByID"))
		return result, e.NewPersistenceError("getUserByID", err)
	}
	return Result{IsValid: true, Email: c.Some(u.Email)}, nil
}
