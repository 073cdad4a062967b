// Package history persists canonical readings and serves time-ranged queries.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/aireclaro/aireclaro/internal/reading"
)

// ErrNoReadings is returned when a query matches nothing at all.
var ErrNoReadings = errors.New("history: no readings")

// QueryOptions narrows a List call. Zero-valued bounds are open; a Limit of
// zero or less means no limit.
type QueryOptions struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Repository defines the interface for reading persistence.
type Repository interface {
	// Insert stores one reading. A duplicate (location, timestamp) pair is
	// silently ignored so collectors can re-deliver without bookkeeping.
	Insert(ctx context.Context, r reading.Reading) error

	// InsertBatch stores many readings with the same duplicate semantics.
	InsertBatch(ctx context.Context, readings []reading.Reading) error

	// List retrieves the readings of one location inside the given bounds,
	// ordered by timestamp ascending.
	List(ctx context.Context, locationID string, opts QueryOptions) ([]reading.Reading, error)

	// Latest retrieves the most recent reading of one location.
	// Returns ErrNoReadings if the location has no history.
	Latest(ctx context.Context, locationID string) (reading.Reading, error)
}
