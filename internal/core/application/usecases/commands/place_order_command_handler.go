package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
)

// PlaceOrderResult carries what the HTTP layer needs to answer the caller:
// the store-assigned identifier and the initial status.
type PlaceOrderResult struct {
	OrderID kernel.OrderID
	Status  order.Status
}

// PlaceOrderCommandHandler implements the producer side of the pipeline:
// it persists a new order in Placed status and then publishes a durable
// processing task referencing its identifier.
//
// The two steps are not atomic. If publishing fails after the insert has
// committed, the order stays Placed forever with no task in flight. This is an
// accepted gap: there is no compensating delete and no outbox.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.TaskPublisher
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
// Requires an OrderUoWFactory for transactional persistence and a
// TaskPublisher for enqueueing the processing task.
func NewPlaceOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.TaskPublisher) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle inserts the order and enqueues its processing task.
// The insert commits before the publish, so the new order is immediately
// visible to status queries as Placed.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return PlaceOrderResult{}, err
	}

	newOrder := order.NewOrder()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PlaceOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return PlaceOrderResult{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return PlaceOrderResult{}, err
	}

	task := ports.ProcessingTask{
		OrderID:    newOrder.ID().Int64(),
		MessageID:  uuid.NewString(),
		EnqueuedAt: time.Now().UTC(),
	}

	if err := h.publisher.Publish(ctx, task); err != nil {
		// The order row is already committed; it remains Placed with no task.
		return PlaceOrderResult{}, fmt.Errorf("order %s placed but task publish failed: %w", newOrder.ID(), err)
	}

	return PlaceOrderResult{
		OrderID: newOrder.ID(),
		Status:  newOrder.Status(),
	}, nil
}
