package purgepasswordresettokens

import (
	"context"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/services"
	"time"
)

type Input struct{}

type Result struct {
	Purged int64
}

type service struct {
	log    logging.Logger
	tokens passwordreset.Repository
	now    func() time.Time
}

func New(
	log logging.Logger,
	tokens passwordreset.Repository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if tokens == nil {
		panic(e.NewNilArgumentError("tokens"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, tokens: tokens, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	purged, err := s.tokens.PurgeExpiredOrUsed(ctx, s.now())
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("op", "purgeExpiredOrUsed"))
		return result, e.NewPersistenceError("purgeExpiredOrUsed", err)
	}
	if purged > 0 {
		s.log.Info(ctx, "Purged password reset tokens.", logging.Entry("count", purged))
	} else {
		s.log.Debug(ctx, "No password reset tokens to purge.")
	}
	return Result{Purged: purged}, nil
}
