// Package errs provides standardized error types for the order pipeline.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping used throughout the application.
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g. ErrObjectNotFound)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is can classify against the sentinel
//
// The worker pool and the HTTP layer both rely on errors.Is against the
// sentinels to route failures: ErrObjectNotFound becomes a 404 at the HTTP
// boundary and an acknowledge-and-skip inside the worker pool, while anything
// else leaves the task unacknowledged for broker redelivery.
package errs
