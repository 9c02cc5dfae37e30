package passwordresetevents

import (
	"context"
	"errors"
	"resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/rabbitmq/schema"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	published   []published
	returnError bool
}

func (c *fakeChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	if c.returnError {
		return errors.New("channel closed")
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublish(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	channel := &fakeChannel{}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), channel, "password_reset")

	err := publisher.Publish(context.Background(), passwordreset.Event{
		Type:   passwordreset.EventCompleted,
		UserID: 42,
		At:     at,
	})

	require.Nil(t, err)
	require.Len(t, channel.published, 1)
	p := channel.published[0]
	require.Equal(t, "password_reset", p.exchange)
	require.Equal(t, "password_reset.completed", p.key)
	require.Equal(t, "application/json", p.msg.ContentType)
	require.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)
	_, err = uuid.Parse(p.msg.MessageId)
	require.Nil(t, err)
	require.JSONEq(t, `{"userId": 42, "at": "2024-03-01T12:00:00Z"}`, string(p.msg.Body))

	var decoded schema.PasswordResetEvent
	require.Nil(t, decoded.Unmarshal(p.msg.Body))
	require.Equal(t, schema.PasswordResetEvent{UserID: 42, At: at}, decoded)
}

func TestMessageIDsAreUnique(t *testing.T) {
	channel := &fakeChannel{}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), channel, "password_reset")
	event := passwordreset.Event{Type: passwordreset.EventRequested, UserID: 1, At: time.Now()}

	require.Nil(t, publisher.Publish(context.Background(), event))
	require.Nil(t, publisher.Publish(context.Background(), event))

	require.NotEqual(t, channel.published[0].msg.MessageId, channel.published[1].msg.MessageId)
}

func TestPublishFailure(t *testing.T) {
	log := logging.NewFakeLogger()
	publisher := NewRabbitMQ(log, &fakeChannel{returnError: true}, "password_reset")

	err := publisher.Publish(context.Background(), passwordreset.Event{Type: passwordreset.EventRequested, UserID: 1})

	require.NotNil(t, err)
	require.Equal(t, 1, log.CountByLevel(logging.ERROR))
}
