package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves a single order from the database.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order retrieval.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query for the given order identifier.
// Returns errs.ObjectNotFoundError when no order exists with that ID,
// which the HTTP layer maps to a 404 response.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Int64()).Row()

	var id int64
	var status int
	var createdAt, updatedAt time.Time

	err := row.Scan(&id, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderQueryResponse{}, errs.NewObjectNotFoundError(
			"order_id", query.OrderID().String(),
		)
	}
	if err != nil {
		return OrderQueryResponse{}, err
	}

	orderID, idErr := kernel.OrderIDFromInt64(id)
	if idErr != nil {
		return OrderQueryResponse{}, idErr
	}

	return OrderQueryResponse{
		ID:        orderID,
		Status:    order.Status(status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
