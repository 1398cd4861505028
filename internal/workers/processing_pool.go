// Package workers contains the processing pool that drains the task queue
// and drives orders through their lifecycle.
package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

const (
	// DefaultConcurrency caps the number of tasks processed simultaneously.
	DefaultConcurrency = 20

	// DefaultTaskTimeout bounds a single task, with headroom over the
	// longest simulated processing delay.
	DefaultTaskTimeout = 30 * time.Second
)

// TaskHandler executes the processing command for one order.
type TaskHandler interface {
	Handle(ctx context.Context, cmd commands.ProcessOrderCommand) error
}

// ProcessingPool consumes task deliveries and processes each one in its own
// goroutine, admitting at most Concurrency tasks at a time through a
// buffered-channel gate. A task is acknowledged only after its command
// completed; a missing order is acknowledged and skipped; any other failure
// returns the delivery to the queue for redelivery.
type ProcessingPool struct {
	consumer    ports.TaskConsumer
	handler     TaskHandler
	log         *slog.Logger
	metrics     *PoolMetrics
	concurrency int
	taskTimeout time.Duration
}

// NewProcessingPool creates a pool draining the given consumer.
// Non-positive concurrency or timeout fall back to the defaults.
func NewProcessingPool(
	consumer ports.TaskConsumer,
	handler TaskHandler,
	concurrency int,
	taskTimeout time.Duration,
	metrics *PoolMetrics,
	log *slog.Logger,
) *ProcessingPool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}

	return &ProcessingPool{
		consumer:    consumer,
		handler:     handler,
		log:         log.With("component", "processing_pool"),
		metrics:     metrics,
		concurrency: concurrency,
		taskTimeout: taskTimeout,
	}
}

// Run consumes deliveries until ctx is cancelled or the delivery channel
// closes, then waits for all in-flight tasks to finish. The consumer keeps
// the delivery channel open across broker outages, so a closed channel
// means shutdown. Returns the error that prevented consumption from
// starting, nil otherwise.
func (p *ProcessingPool) Run(ctx context.Context) error {
	deliveries, err := p.consumer.Consume(ctx)
	if err != nil {
		return err
	}

	p.log.Info("processing pool started", "concurrency", p.concurrency)

	gate := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			p.drain(&wg)
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				p.drain(&wg)
				return nil
			}

			// Block until a slot frees up. The admission gate, not the
			// broker prefetch, is what bounds concurrency.
			select {
			case gate <- struct{}{}:
			case <-ctx.Done():
				if err := delivery.Nack(true); err != nil {
					p.log.Error("failed to nack during shutdown", "error", err)
				}
				p.drain(&wg)
				return nil
			}

			wg.Add(1)
			go func(delivery ports.TaskDelivery) {
				defer wg.Done()
				defer func() { <-gate }()
				p.handleDelivery(ctx, delivery)
			}(delivery)
		}
	}
}

func (p *ProcessingPool) handleDelivery(ctx context.Context, delivery ports.TaskDelivery) {
	p.metrics.InFlight.Inc()
	defer p.metrics.InFlight.Dec()

	task, err := delivery.Task()
	if err != nil {
		// A malformed payload will never parse on redelivery either.
		p.log.Error("dropping malformed task", "error", err)
		p.settle(delivery.Nack(false))
		return
	}

	log := p.log.With("order_id", task.OrderID, "message_id", task.MessageID)

	orderID, err := kernel.OrderIDFromInt64(task.OrderID)
	if err != nil {
		log.Error("dropping task with invalid order id", "error", err)
		p.settle(delivery.Nack(false))
		return
	}

	cmd, err := commands.NewProcessOrderCommand(orderID)
	if err != nil {
		log.Error("dropping task with invalid order id", "error", err)
		p.settle(delivery.Nack(false))
		return
	}

	// Detached from the run context so shutdown drains in-flight tasks
	// instead of aborting them. The timeout still applies.
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.taskTimeout)
	defer cancel()

	started := time.Now()
	err = p.handler.Handle(taskCtx, cmd)

	switch {
	case err == nil:
		p.metrics.Completed.Inc()
		log.Info("task completed", "duration", time.Since(started).String())
		p.settle(delivery.Ack())
	case errors.Is(err, errs.ErrObjectNotFound):
		// The order row never existed or was removed; redelivery cannot
		// fix that, so acknowledge and move on.
		p.metrics.Skipped.Inc()
		log.Warn("order not found, skipping task")
		p.settle(delivery.Ack())
	default:
		p.metrics.Requeued.Inc()
		log.Error("task failed, requeueing", "error", err)
		p.settle(delivery.Nack(true))
	}
}

func (p *ProcessingPool) settle(err error) {
	if err != nil {
		p.log.Error("failed to settle delivery", "error", err)
	}
}

func (p *ProcessingPool) drain(wg *sync.WaitGroup) {
	p.log.Info("draining in-flight tasks")
	wg.Wait()
	p.log.Info("processing pool stopped")
}
