// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations: the producer side
// (placing an order and enqueueing its task) and the worker side (driving an
// order through its lifecycle). All commands follow a consistent pattern:
// validation, short-lived transaction, persistence.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a
	// transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances. Handlers
	// create a fresh unit of work per transition so no transaction is ever
	// held across the processing delay.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)
