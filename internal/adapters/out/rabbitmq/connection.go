// Package rabbitmq provides the broker-facing adapters: a self-healing
// connection wrapper, the task publisher used by the producer side and the
// task consumer drained by the worker pool. The task queue is a durable
// queue on the default exchange with persistent deliveries, so placed
// orders survive a broker restart.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// ErrQueueUnavailable reports that the broker transport is currently down
// and the connection wrapper has not re-established it yet.
var ErrQueueUnavailable = errors.New("task queue unavailable")

const (
	// TaskQueue is the durable queue carrying order processing tasks.
	TaskQueue = "order_queue"

	reconnectInitialBackoff = 1 * time.Second
	reconnectMaxBackoff     = 30 * time.Second
)

// Connection wraps an AMQP connection and channel with automatic recovery.
// On an unexpected close it redials with exponential backoff until it
// succeeds or the supervising context is cancelled.
type Connection struct {
	log *slog.Logger
	url string

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool

	reconnect chan struct{}
}

// NewConnection dials the broker, opens a channel and declares the task
// queue. A background goroutine keeps the connection alive until ctx is
// cancelled or Close is called.
func NewConnection(ctx context.Context, url string, log *slog.Logger) (*Connection, error) {
	c := &Connection{
		log:       log.With("component", "rabbitmq"),
		url:       url,
		reconnect: make(chan struct{}, 1),
	}

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go c.handleReconnect(ctx)

	return c, nil
}

func (c *Connection) connect(ctx context.Context) error {
	c.log.Info("connecting to RabbitMQ")

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err = declareTaskQueue(channel); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()

	// Monitor connection closure for auto-recovery.
	go func() {
		connClosed := conn.NotifyClose(make(chan *amqp091.Error, 1))

		select {
		case <-ctx.Done():
			return
		case closeErr := <-connClosed:
			if c.isClosed() {
				c.log.Info("connection closed gracefully")
				return
			}
			c.log.Error("connection closed unexpectedly", "error", closeErr)
			select {
			case c.reconnect <- struct{}{}:
			default:
			}
		}
	}()

	c.log.Info("connected to RabbitMQ")
	return nil
}

func (c *Connection) handleReconnect(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.reconnect:
			if c.isClosed() {
				return
			}

			backoff := reconnectInitialBackoff
			for {
				c.log.Info("attempting to reconnect to RabbitMQ", "backoff", backoff.String())

				c.closeTransport()

				if err := c.connect(ctx); err == nil {
					c.log.Info("reconnected to RabbitMQ")
					break
				} else {
					c.log.Error("failed to reconnect", "error", err, "next_attempt", backoff.String())
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
					backoff *= 2
					if backoff > reconnectMaxBackoff {
						backoff = reconnectMaxBackoff
					}
				}
			}
		}
	}
}

// declareTaskQueue ensures the durable task queue exists. Declaration is
// idempotent, so both the producer and every worker run it at startup.
func declareTaskQueue(channel *amqp091.Channel) error {
	_, err := channel.QueueDeclare(
		TaskQueue, // name
		true,      // durable
		false,     // auto-deleted
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare task queue: %w", err)
	}

	return nil
}

// Channel returns the current AMQP channel.
// After a reconnect the returned channel is the fresh one.
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// subscribe opens a delivery stream on the current channel with the given
// consumer tag and prefetch window.
func (c *Connection) subscribe(ctx context.Context, tag string, prefetch int) (<-chan amqp091.Delivery, error) {
	channel := c.Channel()
	if channel == nil {
		return nil, fmt.Errorf("failed to start consuming: %w", ErrQueueUnavailable)
	}

	if err := channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := channel.ConsumeWithContext(
		ctx,
		TaskQueue, // queue name
		tag,       // consumer tag
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return msgs, nil
}

// IsAlive reports whether the underlying connection is currently open.
// Used by the health endpoint.
func (c *Connection) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}

func (c *Connection) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Connection) closeTransport() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close shuts the channel and connection down and stops reconnect attempts.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.closed = true
	channel, conn := c.channel, c.conn
	c.channel, c.conn = nil, nil
	c.mu.Unlock()

	if channel != nil {
		if err := channel.Close(); err != nil {
			return fmt.Errorf("error closing channel: %w", err)
		}
	}

	if conn != nil {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("error closing connection: %w", err)
		}
	}

	return nil
}
