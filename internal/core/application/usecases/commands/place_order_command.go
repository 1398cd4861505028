package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a request to create a new order and enqueue its
// processing task. The command carries no payload: orders are identified by
// the identifier the store assigns on insert.
//
// Example:
//
//	cmd := NewPlaceOrderCommand()
//	handler := NewPlaceOrderCommandHandler(uowFactory, publisher)
//
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("failed to place order: %w", err)
//	}
//	fmt.Printf("order %s placed\n", result.OrderID)
type PlaceOrderCommand struct {
	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
func NewPlaceOrderCommand() PlaceOrderCommand {
	return PlaceOrderCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
// Returns ErrPlaceOrderCommandIsNotConstructed if validation fails.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}
