package workers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/workers"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDelivery records how the pool settled it.
type fakeDelivery struct {
	task    ports.ProcessingTask
	taskErr error

	mu       sync.Mutex
	acked    bool
	nacked   bool
	requeued bool
}

func (d *fakeDelivery) Task() (ports.ProcessingTask, error) {
	if d.taskErr != nil {
		return ports.ProcessingTask{}, d.taskErr
	}
	return d.task, nil
}

func (d *fakeDelivery) Ack() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(requeue bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nacked = true
	d.requeued = requeue
	return nil
}

func (d *fakeDelivery) settled() (acked, nacked, requeued bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acked, d.nacked, d.requeued
}

// fakeConsumer feeds a fixed batch of deliveries and closes the channel.
type fakeConsumer struct {
	deliveries []ports.TaskDelivery
}

func (c *fakeConsumer) Consume(_ context.Context) (<-chan ports.TaskDelivery, error) {
	out := make(chan ports.TaskDelivery)
	go func() {
		defer close(out)
		for _, d := range c.deliveries {
			out <- d
		}
	}()
	return out, nil
}

// handlerFunc adapts a function to the pool's task handler.
type handlerFunc func(ctx context.Context, cmd commands.ProcessOrderCommand) error

func (f handlerFunc) Handle(ctx context.Context, cmd commands.ProcessOrderCommand) error {
	return f(ctx, cmd)
}

func makeDeliveries(n int) []*fakeDelivery {
	deliveries := make([]*fakeDelivery, 0, n)
	for i := 0; i < n; i++ {
		deliveries = append(deliveries, &fakeDelivery{
			task: ports.ProcessingTask{
				OrderID:    int64(i + 1),
				MessageID:  "msg",
				EnqueuedAt: time.Now().UTC(),
			},
		})
	}
	return deliveries
}

func asPortDeliveries(deliveries []*fakeDelivery) []ports.TaskDelivery {
	out := make([]ports.TaskDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, d)
	}
	return out
}

func newTestPool(
	consumer ports.TaskConsumer,
	handler workers.TaskHandler,
	concurrency int,
) (*workers.ProcessingPool, *workers.PoolMetrics) {
	metrics := workers.NewUnregisteredPoolMetrics()
	pool := workers.NewProcessingPool(
		consumer,
		handler,
		concurrency,
		time.Minute,
		metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return pool, metrics
}

func TestProcessingPool_AcksCompletedTasks(t *testing.T) {
	deliveries := makeDeliveries(5)
	consumer := &fakeConsumer{deliveries: asPortDeliveries(deliveries)}

	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		return nil
	})

	pool, metrics := newTestPool(consumer, handler, 3)
	require.NoError(t, pool.Run(context.Background()))

	for _, d := range deliveries {
		acked, nacked, _ := d.settled()
		assert.True(t, acked)
		assert.False(t, nacked)
	}
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.Completed))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
}

func TestProcessingPool_BoundsConcurrency(t *testing.T) {
	deliveries := makeDeliveries(25)
	consumer := &fakeConsumer{deliveries: asPortDeliveries(deliveries)}

	var inFlight, maxInFlight atomic.Int64
	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)
		return nil
	})

	pool, metrics := newTestPool(consumer, handler, 5)
	require.NoError(t, pool.Run(context.Background()))

	assert.LessOrEqual(t, maxInFlight.Load(), int64(5))
	assert.Equal(t, float64(25), testutil.ToFloat64(metrics.Completed))

	for _, d := range deliveries {
		acked, _, _ := d.settled()
		assert.True(t, acked)
	}
}

func TestProcessingPool_SkipsMissingOrders(t *testing.T) {
	deliveries := makeDeliveries(1)
	consumer := &fakeConsumer{deliveries: asPortDeliveries(deliveries)}

	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		return errs.NewObjectNotFoundError("order", "1")
	})

	pool, metrics := newTestPool(consumer, handler, 1)
	require.NoError(t, pool.Run(context.Background()))

	acked, nacked, _ := deliveries[0].settled()
	assert.True(t, acked, "missing orders must be acknowledged, not requeued")
	assert.False(t, nacked)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Skipped))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Completed))
}

func TestProcessingPool_RequeuesFailedTasks(t *testing.T) {
	deliveries := makeDeliveries(1)
	consumer := &fakeConsumer{deliveries: asPortDeliveries(deliveries)}

	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		return errors.New("db unavailable")
	})

	pool, metrics := newTestPool(consumer, handler, 1)
	require.NoError(t, pool.Run(context.Background()))

	acked, nacked, requeued := deliveries[0].settled()
	assert.False(t, acked)
	assert.True(t, nacked)
	assert.True(t, requeued, "transient failures must be returned to the queue")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requeued))
}

func TestProcessingPool_DropsMalformedTasks(t *testing.T) {
	delivery := &fakeDelivery{taskErr: errors.New("invalid character 'x'")}
	consumer := &fakeConsumer{deliveries: []ports.TaskDelivery{delivery}}

	var handled atomic.Bool
	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		handled.Store(true)
		return nil
	})

	pool, _ := newTestPool(consumer, handler, 1)
	require.NoError(t, pool.Run(context.Background()))

	acked, nacked, requeued := delivery.settled()
	assert.False(t, acked)
	assert.True(t, nacked)
	assert.False(t, requeued, "malformed payloads must not be redelivered")
	assert.False(t, handled.Load())
}

func TestProcessingPool_DrainsInFlightTasksOnShutdown(t *testing.T) {
	deliveries := makeDeliveries(3)
	consumer := &fakeConsumer{deliveries: asPortDeliveries(deliveries)}

	ctx, cancel := context.WithCancel(context.Background())

	var finished atomic.Int64
	started := make(chan struct{}, 3)
	handler := handlerFunc(func(_ context.Context, _ commands.ProcessOrderCommand) error {
		started <- struct{}{}
		time.Sleep(20 * time.Millisecond)
		finished.Add(1)
		return nil
	})

	pool, _ := newTestPool(consumer, handler, 3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pool.Run(ctx)
	}()

	// Wait until all three tasks are in flight, then request shutdown.
	for n := 0; n < 3; n++ {
		<-started
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not stop")
	}

	assert.Equal(t, int64(3), finished.Load(), "in-flight tasks must finish before shutdown")
	for _, d := range deliveries {
		acked, _, _ := d.settled()
		assert.True(t, acked)
	}
}
