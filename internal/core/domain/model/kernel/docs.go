// Package kernel contains shared value objects used across the order pipeline
// domain. Value objects are immutable, compared by value, and can only be
// created through factory functions that enforce their invariants.
package kernel
