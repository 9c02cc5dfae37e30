package services

import (
	"resetme/internal/app/deps"
	drl "resetme/internal/core/domain/rate_limiter"
	"resetme/internal/core/services"
	checkpasswordresettoken "resetme/internal/core/services/check_password_reset_token"
	purgepasswordresettokens "resetme/internal/core/services/purge_password_reset_tokens"
	ratelimiting "resetme/internal/core/services/rate_limiting"
	requestpasswordreset "resetme/internal/core/services/request_password_reset"
	resetpassword "resetme/internal/core/services/reset_password"
)

type Services struct {
	RequestPasswordReset     services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	ResetPassword            services.Service[resetpassword.Input, resetpassword.Result]
	CheckPasswordResetToken  services.Service[checkpasswordresettoken.Input, checkpasswordresettoken.Result]
	PurgePasswordResetTokens services.Service[purgepasswordresettokens.Input, purgepasswordresettokens.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.RequestPasswordReset = ratelimiting.New(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Value: deps.Config.PasswordResetRequestsPerHour, Interval: drl.Hour},
		requestpasswordreset.New(
			deps.Logger,
			deps.UnitOfWork,
			deps.TokenGenerator,
			deps.Notifier,
			deps.EventPublisher,
			deps.Config.PasswordResetTokenTTL,
			deps.Now,
		),
	)
	s.ResetPassword = resetpassword.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordHasher,
		deps.Notifier,
		deps.EventPublisher,
		deps.Config.PasswordMinLength,
		deps.Now,
	)
	s.CheckPasswordResetToken = checkpasswordresettoken.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.Now,
	)
	s.PurgePasswordResetTokens = purgepasswordresettokens.New(
		deps.Logger,
		deps.PasswordResetRepository,
		deps.Now,
	)

	return s
}
