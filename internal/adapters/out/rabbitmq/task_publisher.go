package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"orderflow/internal/core/ports"

	"github.com/rabbitmq/amqp091-go"
)

// TaskPublisher publishes order processing tasks to the durable task queue
// on the default exchange. Implements ports.TaskPublisher.
type TaskPublisher struct {
	conn *Connection
	log  *slog.Logger
}

// NewTaskPublisher creates a publisher on top of an established connection.
func NewTaskPublisher(conn *Connection, log *slog.Logger) *TaskPublisher {
	return &TaskPublisher{
		conn: conn,
		log:  log.With("component", "task_publisher"),
	}
}

// Publish sends the task as a persistent JSON message, so it survives a
// broker restart together with the durable queue.
func (p *TaskPublisher) Publish(ctx context.Context, task ports.ProcessingTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal processing task: %w", err)
	}

	channel := p.conn.Channel()
	if channel == nil {
		return fmt.Errorf("failed to publish processing task: %w", ErrQueueUnavailable)
	}

	err = channel.PublishWithContext(
		ctx,
		"",        // default exchange
		TaskQueue, // routing key
		false,     // mandatory
		false,     // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    task.MessageID,
			Timestamp:    task.EnqueuedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish processing task: %w", err)
	}

	p.log.Debug("task published",
		"order_id", task.OrderID,
		"message_id", task.MessageID,
	)

	return nil
}
