package kernel

import (
	"fmt"
	"strconv"

	"orderflow/internal/pkg/errs"
)

// ErrOrderIDIsNotAssigned indicates a zero-value OrderID. Identifiers are
// assigned by the order store on insert, so a zero value means the order has
// not been persisted yet (or the ID was never set at all).
var ErrOrderIDIsNotAssigned = errs.NewValueIsRequiredError("OrderID must be assigned by the order store")

// OrderID is a value object identifying a single order. The underlying value
// is the store-assigned bigserial, so it is only valid after the order row has
// been inserted. OrderID is immutable and safe to copy.
//
// Example usage:
//
//	id, err := kernel.OrderIDFromString("42")
//	if err != nil {
//	    // handle invalid identifier
//	}
//	order, err := repo.Get(ctx, id)
type OrderID struct {
	id int64
}

// OrderIDFromInt64 creates an OrderID from a raw store value.
// Returns an error for non-positive values.
func OrderIDFromInt64(v int64) (OrderID, error) {
	id := OrderID{id: v}
	if err := id.Validate(); err != nil {
		return OrderID{}, err
	}
	return id, nil
}

// OrderIDFromString parses an OrderID from its decimal string representation.
// Used when reconstructing identifiers from URL path parameters and queue
// payloads.
func OrderIDFromString(s string) (OrderID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause("orderID", fmt.Errorf("%q is not a valid order id", s))
	}
	return OrderIDFromInt64(v)
}

// Validate reports whether the OrderID holds a store-assigned value.
func (o OrderID) Validate() error {
	if o.id <= 0 {
		return ErrOrderIDIsNotAssigned
	}
	return nil
}

// Int64 returns the raw store value.
func (o OrderID) Int64() int64 {
	return o.id
}

// String returns the decimal representation of the identifier.
func (o OrderID) String() string {
	return strconv.FormatInt(o.id, 10)
}

// IsEqual compares two identifiers by value.
func (o OrderID) IsEqual(other OrderID) bool {
	return o.id == other.id
}
