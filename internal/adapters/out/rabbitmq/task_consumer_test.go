package rabbitmq

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/ports"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskSource struct {
	mu      sync.Mutex
	streams []chan amqp091.Delivery
	closed  bool
}

func (f *fakeTaskSource) subscribe(_ context.Context, _ string, _ int) (<-chan amqp091.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.streams) == 0 {
		return nil, ErrQueueUnavailable
	}

	stream := f.streams[0]
	f.streams = f.streams[1:]
	return stream, nil
}

func (f *fakeTaskSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTaskSource) markClosed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func newTestConsumer(source taskSource) *TaskConsumer {
	return &TaskConsumer{
		conn:     source,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tag:      "test-consumer",
		prefetch: 1,
	}
}

func deliveryFor(t *testing.T, orderID int64) amqp091.Delivery {
	t.Helper()

	body, err := json.Marshal(ports.ProcessingTask{OrderID: orderID})
	require.NoError(t, err)

	return amqp091.Delivery{Body: body}
}

func receiveTask(t *testing.T, out <-chan ports.TaskDelivery) ports.ProcessingTask {
	t.Helper()

	select {
	case delivery, ok := <-out:
		require.True(t, ok, "delivery channel closed unexpectedly")
		task, err := delivery.Task()
		require.NoError(t, err)
		return task
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return ports.ProcessingTask{}
	}
}

func TestTaskConsumer_DeliveriesSurviveStreamLoss(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan amqp091.Delivery, 1)
	second := make(chan amqp091.Delivery, 1)
	defer close(second)

	first <- deliveryFor(t, 1)
	close(first)
	second <- deliveryFor(t, 2)

	source := &fakeTaskSource{streams: []chan amqp091.Delivery{first, second}}

	out, err := newTestConsumer(source).Consume(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), receiveTask(t, out).OrderID)
	assert.Equal(t, int64(2), receiveTask(t, out).OrderID)
}

func TestTaskConsumer_ClosesOutputOnGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan amqp091.Delivery)
	source := &fakeTaskSource{streams: []chan amqp091.Delivery{first}}

	out, err := newTestConsumer(source).Consume(ctx)
	require.NoError(t, err)

	source.markClosed()
	close(first)

	select {
	case _, ok := <-out:
		assert.False(t, ok, "expected delivery channel to close")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery channel to close")
	}
}

func TestTaskConsumer_ConsumeFailsWithoutTransport(t *testing.T) {
	source := &fakeTaskSource{}

	out, err := newTestConsumer(source).Consume(context.Background())

	require.ErrorIs(t, err, ErrQueueUnavailable)
	assert.Nil(t, out)
}
