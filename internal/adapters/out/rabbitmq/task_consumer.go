package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/ports"

	"github.com/rabbitmq/amqp091-go"
)

// taskSource is the slice of Connection the consumer relies on: opening a
// delivery stream on the current channel, and telling a graceful shutdown
// apart from a broker outage.
type taskSource interface {
	subscribe(ctx context.Context, tag string, prefetch int) (<-chan amqp091.Delivery, error)
	isClosed() bool
}

// TaskConsumer drains the durable task queue with manual acknowledgements.
// When the broker drops the delivery stream it resubscribes on top of the
// recovered connection instead of terminating. Implements ports.TaskConsumer.
type TaskConsumer struct {
	conn     taskSource
	log      *slog.Logger
	tag      string
	prefetch int
}

// NewTaskConsumer creates a consumer on top of an established connection.
// The tag identifies this consumer to the broker; prefetch caps the number
// of unacknowledged deliveries in flight on the channel.
func NewTaskConsumer(conn *Connection, tag string, prefetch int, log *slog.Logger) *TaskConsumer {
	return &TaskConsumer{
		conn:     conn,
		log:      log.With("component", "task_consumer"),
		tag:      tag,
		prefetch: prefetch,
	}
}

// Consume starts delivering tasks from the queue. The returned channel is
// closed only when ctx is cancelled or the connection is closed for good;
// after a broker outage the consumer resubscribes and keeps delivering on
// the same channel. Each delivery must be settled with Ack or Nack by the
// caller.
func (c *TaskConsumer) Consume(ctx context.Context) (<-chan ports.TaskDelivery, error) {
	msgs, err := c.conn.subscribe(ctx, c.tag, c.prefetch)
	if err != nil {
		return nil, err
	}

	c.log.Info("started consuming from queue",
		"queue", TaskQueue,
		"prefetch", c.prefetch,
	)

	out := make(chan ports.TaskDelivery)
	go c.pump(ctx, msgs, out)

	return out, nil
}

// pump forwards deliveries to out, resubscribing whenever the broker drops
// the stream while the connection is still meant to be alive.
func (c *TaskConsumer) pump(ctx context.Context, msgs <-chan amqp091.Delivery, out chan<- ports.TaskDelivery) {
	defer close(out)

	for {
		for msg := range msgs {
			select {
			case out <- &taskDelivery{msg: msg}:
			case <-ctx.Done():
				return
			}
		}

		// The delivery stream closed underneath us. Unless this is a
		// shutdown, wait for the connection to recover and resubscribe.
		if ctx.Err() != nil || c.conn.isClosed() {
			return
		}

		next, err := c.awaitResubscribe(ctx)
		if err != nil {
			return
		}
		msgs = next
	}
}

func (c *TaskConsumer) awaitResubscribe(ctx context.Context) (<-chan amqp091.Delivery, error) {
	backoff := reconnectInitialBackoff

	for {
		if c.conn.isClosed() {
			return nil, ErrQueueUnavailable
		}

		msgs, err := c.conn.subscribe(ctx, c.tag, c.prefetch)
		if err == nil {
			c.log.Info("resubscribed to queue", "queue", TaskQueue)
			return msgs, nil
		}

		c.log.Error("failed to resubscribe", "error", err, "next_attempt", backoff.String())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > reconnectMaxBackoff {
				backoff = reconnectMaxBackoff
			}
		}
	}
}

// taskDelivery adapts one AMQP delivery to ports.TaskDelivery.
type taskDelivery struct {
	msg amqp091.Delivery
}

func (d *taskDelivery) Task() (ports.ProcessingTask, error) {
	var task ports.ProcessingTask
	if err := json.Unmarshal(d.msg.Body, &task); err != nil {
		return ports.ProcessingTask{}, fmt.Errorf("failed to unmarshal processing task: %w", err)
	}

	return task, nil
}

func (d *taskDelivery) Ack() error {
	return d.msg.Ack(false)
}

func (d *taskDelivery) Nack(requeue bool) error {
	return d.msg.Nack(false, requeue)
}
