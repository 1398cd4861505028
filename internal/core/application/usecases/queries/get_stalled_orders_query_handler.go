package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetStalledOrdersQueryHandler retrieves orders stuck in the processing state.
type GetStalledOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetStalledOrdersQueryHandler creates a handler for the stalled order query.
func NewGetStalledOrdersQueryHandler(db *gorm.DB) GetStalledOrdersQueryHandler {
	return GetStalledOrdersQueryHandler{db: db}
}

// Handle returns orders that entered the processing state before
// now minus the query's threshold and have not advanced since.
func (h GetStalledOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetStalledOrdersQuery,
) ([]OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-query.OlderThan())
	orders := make([]OrderQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			created_at,
			updated_at
		FROM orders
		WHERE status = ? AND updated_at < ?
		ORDER BY updated_at
	`, int(order.Processing), cutoff).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var status int
		var createdAt, updatedAt time.Time

		if err = rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.OrderIDFromInt64(id)
		if idErr != nil {
			return nil, idErr
		}

		orders = append(orders, OrderQueryResponse{
			ID:        orderID,
			Status:    order.Status(status),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
