// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling the conversion between domain entities and database rows.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The primary key is a bigserial assigned by the database on insert, indexed
// by status for the stalled-order monitor.
type OrderDTO struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Status    int   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
// For unsaved aggregates the ID field stays zero so the database assigns one.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:        aggregate.ID().Int64(),
		Status:    int(aggregate.Status()),
		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder, which revalidates the persisted state.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.OrderIDFromInt64(dto.ID)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, order.Status(dto.Status), dto.CreatedAt, dto.UpdatedAt)
}
