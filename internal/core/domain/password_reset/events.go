package passwordreset

import (
	"context"
	"resetme/internal/core/domain/user"
	"time"
)

type EventType string

const (
	EventRequested EventType = "password_reset.requested"
	EventCompleted EventType = "password_reset.completed"
)

type Event struct {
	Type   EventType
	UserID user.ID
	At     time.Time
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
