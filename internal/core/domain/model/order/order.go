package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrOrderIDAlreadyAssigned is returned when AssignID is called on an
	// order that already carries a store-assigned identifier. Identifiers are
	// immutable once assigned.
	ErrOrderIDAlreadyAssigned = errors.New("order ID is immutable once assigned")
)

// Order is the aggregate root tracked by the processing pipeline. It carries a
// store-assigned identifier and a status that only ever advances
// placed -> processing -> done.
//
// Order follows these invariants:
//   - The identifier is assigned exactly once, by the order store on insert
//   - Status transitions follow the Status state machine (no regression)
//   - updatedAt is refreshed on every status change
//   - Can only be created through NewOrder or RestoreOrder
//
// The struct uses private fields so invariants can only be touched through
// validated methods.
type Order struct {
	// id is the store-assigned identifier; zero until the order is persisted
	id kernel.OrderID

	// status is the current state in the processing lifecycle
	status Status

	// createdAt is set once at creation time
	createdAt time.Time

	// updatedAt is refreshed on every status change
	updatedAt time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in Placed status with no identifier yet.
// The identifier is assigned by the order store when the aggregate is first
// persisted (see AssignID).
//
// Example:
//
//	o := order.NewOrder()
//	if err := repo.Add(ctx, o); err != nil {
//	    return err
//	}
//	taskID := o.ID() // assigned during Add
func NewOrder() *Order {
	now := time.Now().UTC()
	return &Order{
		status:        Placed,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
}

// RestoreOrder reconstructs an Order from persistence. All invariants are
// re-validated so corrupt rows surface as errors instead of invalid
// aggregates.
func RestoreOrder(id kernel.OrderID, status Status, createdAt, updatedAt time.Time) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
// Returns ErrOrderIsNotConstructed for zero-value or hand-built instances.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's store-assigned identifier.
// The zero value indicates the order has not been persisted yet.
func (o *Order) ID() kernel.OrderID {
	return o.id
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the timestamp of the last status change.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// IsDone reports whether the order has reached its terminal status.
func (o *Order) IsDone() bool {
	return o.status.IsFinal()
}

// AssignID sets the store-assigned identifier after the first insert.
// Called by the order repository only; the identifier is immutable afterwards.
func (o *Order) AssignID(id kernel.OrderID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if o.id.Validate() == nil {
		return ErrOrderIDAlreadyAssigned
	}

	o.id = id
	return nil
}

// StartProcessing advances the order to Processing.
//
// The transition is idempotent: a redelivered task may find the order already
// in Processing and re-entry succeeds without error. Completed orders cannot
// regress; attempting to start processing a Done order returns an error.
func (o *Order) StartProcessing() error {
	newStatus, err := o.status.StartProcessing()
	if err != nil {
		return err
	}

	o.setStatus(newStatus)
	return nil
}

// Complete advances the order to Done.
//
// The transition is idempotent: re-applying Complete to an already Done order
// succeeds without error, which makes redelivered tasks safe to re-drive.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.setStatus(newStatus)
	return nil
}

// setStatus records the transition and refreshes updatedAt.
func (o *Order) setStatus(s Status) {
	o.status = s
	o.updatedAt = time.Now().UTC()
}
