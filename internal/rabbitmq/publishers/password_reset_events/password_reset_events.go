package passwordresetevents

import (
	"context"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/rabbitmq/schema"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ publishes password reset events to a topic exchange using the event
// type as the routing key.
type RabbitMQ struct {
	log      logging.Logger
	channel  publisher
	exchange string
}

func NewRabbitMQ(log logging.Logger, channel publisher, exchange string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if exchange == "" {
		panic("exchange name must not be empty")
	}
	return &RabbitMQ{log: log, channel: channel, exchange: exchange}
}

func (p *RabbitMQ) Publish(ctx context.Context, event passwordreset.Event) error {
	message := schema.PasswordResetEvent{UserID: int64(event.UserID), At: event.At}
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	messageID := uuid.NewString()
	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    messageID,
		Timestamp:    event.At,
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		logging.Error(ctx, p.log, err, logging.Entry("type", event.Type))
		return err
	}
	p.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", p.exchange),
		logging.Entry("RK", event.Type),
		logging.Entry("messageID", messageID),
		logging.Entry("userID", event.UserID),
	)
	return nil
}
