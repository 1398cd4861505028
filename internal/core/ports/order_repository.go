package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage. The store assigns the
	// identifier; on success it is set on the aggregate (see Order.AssignID).
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists a status change to an existing order.
	// Returns errs.ObjectNotFoundError if the order does not exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its identifier.
	// Returns errs.ObjectNotFoundError if the order does not exist.
	Get(ctx context.Context, id kernel.OrderID) (*order.Order, error)

	// GetAll retrieves every known order, oldest first. Used only by the
	// debug/inspection surface, never by the pipeline itself.
	GetAll(ctx context.Context) ([]*order.Order, error)
}
