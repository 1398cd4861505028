// Package queries contains read-only operations against the order store.
// Query handlers bypass the domain repositories and read the database
// directly, returning lightweight response structs for the HTTP layer and
// background jobs.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves the current status of a single order.
//
// Example:
//
//	id, _ := kernel.OrderIDFromString(c.Param("id"))
//	query, err := NewGetOrderQuery(id)
//	if err != nil {
//	    return err
//	}
//	resp, err := handler.Handle(ctx, query)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the given order identifier.
// Returns an error if the identifier is not a valid store-assigned value.
func NewGetOrderQuery(orderID kernel.OrderID) (GetOrderQuery, error) {
	q := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := q.setOrderID(orderID); err != nil {
		return GetOrderQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier being queried.
func (q GetOrderQuery) OrderID() kernel.OrderID {
	return q.orderID
}

func (q *GetOrderQuery) setOrderID(orderID kernel.OrderID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

// OrderQueryResponse represents one order as seen by the read side.
type OrderQueryResponse struct {
	ID        kernel.OrderID
	Status    order.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
