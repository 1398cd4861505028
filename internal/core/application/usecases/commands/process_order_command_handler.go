package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// WorkFunc performs the actual unit of work for an order, between the
// Processing and Done transitions. Production wiring installs a simulated
// variable-duration delay; tests inject instrumented functions.
type WorkFunc func(ctx context.Context, orderID kernel.OrderID) error

// ProcessOrderCommandHandler drives a single order through its lifecycle:
// mark Processing, perform the unit of work, mark Done. Each transition runs
// in its own short-lived transaction — no transaction is held across the work
// itself.
//
// Error contract (the worker pool's acknowledgment discipline depends on it):
//   - order not found: errs.ObjectNotFoundError (caller acks and skips)
//   - order already Done: nil without mutation (idempotent redelivery no-op)
//   - any persistence or work failure: the error, order state left as-is
type ProcessOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	work       WorkFunc
}

// NewProcessOrderCommandHandler creates a handler for order processing.
// Requires an OrderUoWFactory for transactional persistence and the work
// function executed between the two status transitions.
func NewProcessOrderCommandHandler(uowFactory OrderUoWFactory, work WorkFunc) ProcessOrderCommandHandler {
	return ProcessOrderCommandHandler{
		uowFactory: uowFactory,
		work:       work,
	}
}

// Handle processes the order referenced by the command.
// The Processing transition is committed before the work starts, making it
// observable to concurrent status queries immediately.
func (h *ProcessOrderCommandHandler) Handle(ctx context.Context, cmd ProcessOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	alreadyDone, err := h.markProcessing(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if alreadyDone {
		return nil
	}

	if err := h.work(ctx, cmd.OrderID()); err != nil {
		return err
	}

	return h.complete(ctx, cmd.OrderID())
}

// markProcessing commits the Placed -> Processing transition. Returns
// alreadyDone when the order has reached its terminal status, in which case
// the redelivered task must be acknowledged without any mutation.
func (h *ProcessOrderCommandHandler) markProcessing(ctx context.Context, id kernel.OrderID) (alreadyDone bool, err error) {
	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, id)
	if err != nil {
		return false, err
	}

	if aggregate.IsDone() {
		return true, nil
	}

	if err = aggregate.StartProcessing(); err != nil {
		return false, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return false, err
	}

	return false, uow.Commit(ctx)
}

// complete commits the Processing -> Done transition. The order is re-read in
// a fresh transaction because the work may have taken seconds.
func (h *ProcessOrderCommandHandler) complete(ctx context.Context, id kernel.OrderID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = aggregate.Complete(); err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
