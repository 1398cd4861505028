package ports

import (
	"context"
	"time"
)

// ProcessingTask is the message published to the work queue when an order is
// placed. It carries the order identifier plus correlation metadata; the order
// row itself stays in the store, so redelivering the same task is harmless.
type ProcessingTask struct {
	OrderID    int64     `json:"order_id"`
	MessageID  string    `json:"message_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// TaskPublisher publishes processing tasks to the durable work queue.
// Implementations must use persistent delivery so tasks survive a broker
// restart.
type TaskPublisher interface {
	Publish(ctx context.Context, task ProcessingTask) error
}

// TaskDelivery is a single task handed to a consumer by the work queue.
// The consumer owns the delivery until it is acknowledged or abandoned:
// Ack confirms successful processing and removes the task from the queue,
// Nack returns it (requeue true) or discards it (requeue false). Absence of
// acknowledgment is the sole failure signal the pipeline relies on.
type TaskDelivery interface {
	// Task decodes the delivery payload.
	Task() (ProcessingTask, error)

	// Ack confirms the task was fully processed.
	Ack() error

	// Nack abandons the task. With requeue the broker redelivers it to
	// another consumer.
	Nack(requeue bool) error
}

// TaskConsumer delivers published tasks to exactly one active consumer at a
// time with at-least-once semantics. The returned channel closes when the
// context is cancelled or the underlying connection is lost.
type TaskConsumer interface {
	Consume(ctx context.Context) (<-chan TaskDelivery, error)
}
