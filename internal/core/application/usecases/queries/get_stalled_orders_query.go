package queries

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetStalledOrdersQueryIsNotConstructed = errors.New(
	"GetStalledOrdersQuery must be created via NewGetStalledOrdersQuery constructor",
)

// GetStalledOrdersQuery finds orders that have been in the processing state
// for longer than the given threshold. Used by the background monitor to
// surface tasks whose workers may have died mid-flight.
type GetStalledOrdersQuery struct { //nolint:recvcheck //using for validation
	olderThan time.Duration

	guard guard.ConstructorGuard
}

// NewGetStalledOrdersQuery creates a query with the given staleness threshold.
// The threshold must be positive.
func NewGetStalledOrdersQuery(olderThan time.Duration) (GetStalledOrdersQuery, error) {
	q := GetStalledOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := q.setOlderThan(olderThan); err != nil {
		return GetStalledOrdersQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStalledOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetStalledOrdersQueryIsNotConstructed)
}

// OlderThan returns the staleness threshold.
func (q GetStalledOrdersQuery) OlderThan() time.Duration {
	return q.olderThan
}

func (q *GetStalledOrdersQuery) setOlderThan(olderThan time.Duration) error {
	if olderThan <= 0 {
		return errs.NewValueIsInvalidError("olderThan")
	}

	q.olderThan = olderThan
	return nil
}
