package workers

import (
	"context"
	"math/rand"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
)

const (
	// MinWorkDelay and MaxWorkDelay bound the simulated processing time.
	MinWorkDelay = 10 * time.Millisecond
	MaxWorkDelay = 10 * time.Second
)

// SimulatedWork returns a work function that sleeps a uniform random
// duration between lower and upper, standing in for real order processing.
// It returns early with the context error when the context expires.
func SimulatedWork(lower, upper time.Duration) commands.WorkFunc {
	if lower <= 0 || upper < lower {
		lower, upper = MinWorkDelay, MaxWorkDelay
	}

	return func(ctx context.Context, _ kernel.OrderID) error {
		delay := lower
		if upper > lower {
			delay += time.Duration(rand.Int63n(int64(upper - lower)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			return nil
		}
	}
}
