package rabbitmq

import (
	"context"
	"fmt"
	"resetme/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and redials when the broker closes it.
type Connection struct {
	conn   *amqp.Connection
	lock   sync.RWMutex
	closed int32
	log    logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{conn: conn, log: log}
	go connection.watch(url, conn)
	return connection, nil
}

func (c *Connection) watch(url string, conn *amqp.Connection) {
	for {
		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || c.IsClosed() {
			c.log.Info(context.Background(), "RabbitMQ connection closed.")
			return
		}

		c.log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for !c.IsClosed() {
			time.Sleep(reconnectDelay)

			newConn, err := amqp.Dial(url)
			if err != nil {
				c.log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
				continue
			}
			c.lock.Lock()
			c.conn = newConn
			c.lock.Unlock()
			conn = newConn
			c.log.Info(context.Background(), "RabbitMQ reconnect success.")
			break
		}
	}
}

func (c *Connection) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Connection) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn.Close()
}

// Channel opens a channel on the current connection. The channel is reopened
// on the next use after the broker closed it.
func (c *Connection) Channel() (*Channel, error) {
	channel := &Channel{connection: c}
	if err := channel.reopen(); err != nil {
		return nil, err
	}
	return channel, nil
}

type Channel struct {
	connection *Connection
	ch         *amqp.Channel
	notify     chan *amqp.Error
	lock       sync.Mutex
	closed     int32
}

func (ch *Channel) reopen() error {
	ch.connection.lock.RLock()
	defer ch.connection.lock.RUnlock()
	amqpChannel, err := ch.connection.conn.Channel()
	if err != nil {
		return err
	}
	ch.ch = amqpChannel
	ch.notify = amqpChannel.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (ch *Channel) lost() bool {
	if ch.ch == nil {
		return true
	}
	select {
	case <-ch.notify:
		return true
	default:
		return false
	}
}

func (ch *Channel) current() (*amqp.Channel, error) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if ch.IsClosed() {
		return nil, amqp.ErrClosed
	}
	if ch.lost() {
		if err := ch.reopen(); err != nil {
			return nil, err
		}
		ch.connection.log.Info(context.Background(), "RabbitMQ channel reopened.")
	}
	return ch.ch, nil
}

// DeclareTopicExchange declares a durable topic exchange.
func (ch *Channel) DeclareTopicExchange(name string) error {
	amqpChannel, err := ch.current()
	if err != nil {
		return err
	}
	return amqpChannel.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	amqpChannel, err := ch.current()
	if err != nil {
		return err
	}
	return amqpChannel.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if ch.ch == nil {
		return nil
	}
	return ch.ch.Close()
}
