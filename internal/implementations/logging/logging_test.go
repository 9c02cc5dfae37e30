package logging

import (
	"context"
	"errors"
	"resetme/internal/core/domain/logging"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLoggerFrom(zap.New(core)), logs
}

func TestLevels(t *testing.T) {
	ctx := context.Background()
	log, logs := newObservedLogger()

	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	log.Warning(ctx, "warning")
	log.Error(ctx, "error")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, zapcore.WarnLevel, entries[2].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestEntriesBecomeFields(t *testing.T) {
	log, logs := newObservedLogger()

	log.Info(
		context.Background(),
		"Password reset token issued.",
		logging.Entry("userID", int64(42)),
		logging.Entry("email", "user@example.com"),
	)

	entries := logs.FilterMessage("Password reset token issued.").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(42), fields["userID"])
	require.Equal(t, "user@example.com", fields["email"])
}

func TestErrorWithoutSentryClient(t *testing.T) {
	log, logs := newObservedLogger()

	require.NotPanics(t, func() {
		logging.Error(context.Background(), log, errors.New("boom"))
	})
	entries := logs.FilterMessage("Unexpected error.").AllUntimed()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.Equal(t, "boom", entries[0].ContextMap()["err"])
}
