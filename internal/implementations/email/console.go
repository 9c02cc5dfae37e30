package email

import (
	"context"
	"resetme/internal/core/domain/logging"
)

// ConsoleSender writes messages to the log instead of sending them. It is
// meant for local development only since the log receives reset links.
type ConsoleSender struct {
	log logging.Logger
}

func NewConsoleSender(log logging.Logger) *ConsoleSender {
	if log == nil {
		panic("Argument log must not be nil.")
	}
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(
		ctx,
		"Email message.",
		logging.Entry("to", msg.To),
		logging.Entry("subject", msg.Subject),
		logging.Entry("body", msg.Body),
	)
	return nil
}
