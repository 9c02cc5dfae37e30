package sweeper

import (
	"context"
	"resetme/internal/core/domain/logging"
	"resetme/internal/core/services"
	purgepasswordresettokens "resetme/internal/core/services/purge_password_reset_tokens"
	"time"
)

// Run purges expired and used password reset tokens every period until ctx is
// done. A failed sweep is logged and the next tick tries again.
func Run(
	ctx context.Context,
	log logging.Logger,
	service services.Service[purgepasswordresettokens.Input, purgepasswordresettokens.Result],
	period time.Duration,
) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info(
		ctx,
		"Starting periodic password reset token sweeper.",
		logging.Entry("periodMinutes", period.Minutes()),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info(context.Background(), "Stopping periodic password reset token sweeper.")
			return
		case <-ticker.C:
			result, err := service.Run(ctx, purgepasswordresettokens.Input{})
			if err != nil {
				log.Warning(ctx, "Password reset token sweep failed.", logging.Entry("err", err))
				continue
			}
			log.Debug(ctx, "Password reset token sweep finished.", logging.Entry("purged", result.Purged))
		}
	}
}
