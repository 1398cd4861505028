package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions so orders always
// advance through the processing pipeline and never regress.
//
// State transitions:
//
//	Placed ──> Processing ──> Done
//	               │            │
//	               └── (re-entry on redelivery is a no-op)
//
// Both transitions are idempotent: a task redelivered after a crash may find
// the order already in Processing (or already Done) and must be able to drive
// it to completion without error.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Placed is the initial status assigned when the producer persists a new
	// order. Orders in this status are waiting for a worker to pick up their
	// processing task.
	Placed

	// Processing indicates a worker has started processing the order.
	// The transition to Processing is committed before any processing work
	// begins, so it is observable to concurrent readers immediately.
	Processing

	// Done indicates processing has completed. This is a final state with no
	// further transitions allowed.
	Done
)

// getStatusStrings returns a map of Status values to the string
// representations used in API responses and logs. The store persists the
// numeric enum, not these names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Placed:     "placed",
		Processing: "processing",
		Done:       "done",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Placed:     "placed",
		Processing: "processing",
		Done:       "done",
	}
}

// StatusFromString parses a persisted status representation.
// Returns an error for strings that do not name a valid status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
//
// Valid statuses are: Placed, Processing, Done. Unknown (0) and any other
// values are invalid. Used to reject corrupt values coming from persistence.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase wire/storage name of the status.
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsFinal reports whether the status is terminal.
func (s Status) IsFinal() bool {
	return s == Done
}

// StartProcessing transitions the status to Processing.
//
// Valid transitions:
//   - Placed -> Processing (worker picks up the task)
//   - Processing -> Processing (redelivered task, idempotent re-entry)
//
// Invalid transitions:
//   - Done -> Processing (completed orders never regress)
//   - Unknown -> Processing (invalid initial state)
//
// Returns (Processing, nil) on a valid transition, or (0, error) otherwise.
func (s Status) StartProcessing() (Status, error) {
	if s != Placed && s != Processing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to start processing", s.String()),
		)
	}

	return Processing, nil
}

// Complete transitions the status to Done.
//
// Valid transitions:
//   - Processing -> Done (processing finished)
//   - Done -> Done (redelivered task, idempotent re-apply)
//
// Invalid transitions:
//   - Placed -> Done (must pass through Processing first)
//   - Unknown -> Done (invalid initial state)
//
// Returns (Done, nil) on a valid transition, or (0, error) otherwise.
func (s Status) Complete() (Status, error) {
	if s != Processing && s != Done {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Done, nil
}
