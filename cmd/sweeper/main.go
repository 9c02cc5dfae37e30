package main

import (
	"context"
	"os"
	"os/signal"
	"resetme/internal/app/deps"
	"resetme/internal/app/services"
	"resetme/internal/app/sweeper"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	deps, shutdownDeps := deps.InitDeps()
	defer shutdownDeps()

	services := services.InitServices(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper.Run(ctx, deps.Logger, services.PurgePasswordResetTokens, deps.Config.PasswordResetSweepPeriod)
}
