package requestpasswordreset

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
	Email c.Email
}

func (i Input) GetRateLimitKey() string {
	return "password_reset::" + string(i.Email)
}

type Result struct {
	Message string

	// Token is set only when a token has been issued. It must not be exposed
	// to the client outside of test mode.
	Token c.Optional[passwordreset.Token]
}

func accepted(token c.Optional[passwordreset.Token]) Result {
	return Result{Message: passwordreset.RequestAcceptedMessage, Token: token}
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	tokenGenerator passwordreset.TokenGenerator
	notifier       passwordreset.Notifier
	events         passwordreset.EventPublisher
	ttl            time.Duration
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	tokenGenerator passwordreset.TokenGenerator,
	notifier passwordreset.Notifier,
	events passwordreset.EventPublisher,
	ttl time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
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
	if ttl <= 0 {
		ttl = passwordreset.DefaultTTL
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		tokenGenerator: tokenGenerator,
		notifier:       notifier,
		events:         events,
		ttl:            ttl,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.Email == "" {
		return result, e.NewValidationError("email", "must not be empty")
	}

	u, token, err := s.issue(ctx, input.Email)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(
			ctx,
			"Password reset requested for unknown email.",
			logging.Entry("email", input.Email),
		)
		return accepted(c.None[passwordreset.Token]()), nil
	}
	if err != nil {
		return result, err
	}
	s.log.Info(
		ctx,
		"Password reset token issued.",
		logging.Entry("userID", u.ID),
		logging.Entry("email", u.Email),
	)

	s.publish(ctx, passwordreset.Event{Type: passwordreset.EventRequested, UserID: u.ID, At: token.CreatedAt})

	err = s.notifier.SendResetLink(ctx, u, token.Token)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", u.ID), logging.Entry("op", "sendResetLink"))
		return result, e.NewDeliveryError(err)
	}
	return accepted(c.Some(token.Token)), nil
}

func (s *service) issue(ctx context.Context, email c.Email) (u user.User, token passwordreset.ResetToken, err error) {
	tx, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "begin"))
		return u, token, e.NewPersistenceError("begin", err)
	}
	defer tx.Rollback(ctx)

	u, err = tx.Users().GetByEmail(ctx, email)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return u, token, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", email), logging.Entry("op", "getUserByEmail"))
		return u, token, e.NewPersistenceError("getUserByEmail", err)
	}

	for attempt := 1; attempt <= passwordreset.MaxIssueAttempts; attempt++ {
		token, err = tx.PasswordResetTokens().Issue(ctx, passwordreset.IssueInput{
			UserID:    u.ID,
			Token:     s.tokenGenerator.GenerateToken(),
			CreatedAt: s.now(),
			TTL:       s.ttl,
		})
		if !errors.Is(err, passwordreset.ErrTokenAlreadyExists) {
			break
		}
		s.log.Warning(
			ctx,
			"Generated password reset token already exists.",
			logging.Entry("userID", u.ID),
			logging.Entry("attempt", attempt),
		)
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", u.ID), logging.Entry("op", "issue"))
		return u, token, e.NewPersistenceError("issue", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userID", u.ID), logging.Entry("op", "commit"))
		return u, token, e.NewPersistenceError("commit", err)
	}
	return u, token, nil
}

func (s *service) publish(ctx context.Context, event passwordreset.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warning(
			ctx,
			"Could not publish password reset event.",
			logging.Entry("type", event.Type),
			logging.Entry("userID", event.UserID),
			logging.Entry("err", err),
		)
	}
}
