// Package order provides the domain entity and business logic for order
// lifecycle management in the processing pipeline. It implements the Order
// aggregate root and the Status state machine that governs its transitions.
//
// The package includes:
//   - Order: the aggregate root carrying identity, status, and timestamps
//   - Status: a state machine enforcing placed -> processing -> done
//
// Key business rules:
//   - Identifiers are assigned by the order store and immutable afterwards
//   - Status is monotonic: it only ever advances, never regresses
//   - Both transitions are idempotent so redelivered tasks (at-least-once
//     delivery) can be re-driven safely
//   - Orders are never deleted by the pipeline
package order
