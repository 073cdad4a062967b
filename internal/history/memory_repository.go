package history

import (
	"context"
	"sort"
	"sync"

	"github.com/aireclaro/aireclaro/internal/reading"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	readings map[string][]reading.Reading
}

// NewInMemoryRepository creates a new in-memory history repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		readings: make(map[string][]reading.Reading),
	}
}

// Insert stores one reading, ignoring duplicates.
func (r *InMemoryRepository) Insert(_ context.Context, rec reading.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(rec)
	return nil
}

// InsertBatch stores many readings, ignoring duplicates.
func (r *InMemoryRepository) InsertBatch(_ context.Context, readings []reading.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range readings {
		r.insertLocked(rec)
	}
	return nil
}

func (r *InMemoryRepository) insertLocked(rec reading.Reading) {
	for _, existing := range r.readings[rec.LocationID] {
		if existing.Timestamp.Equal(rec.Timestamp) {
			return
		}
	}
	r.readings[rec.LocationID] = append(r.readings[rec.LocationID], rec)
}

// List retrieves the readings of one location ordered by timestamp ascending.
func (r *InMemoryRepository) List(_ context.Context, locationID string, opts QueryOptions) ([]reading.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []reading.Reading
	for _, rec := range r.readings[locationID] {
		if !opts.Since.IsZero() && rec.Timestamp.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && rec.Timestamp.After(opts.Until) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Latest retrieves the most recent reading of one location.
func (r *InMemoryRepository) Latest(_ context.Context, locationID string) (reading.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series := r.readings[locationID]
	if len(series) == 0 {
		return reading.Reading{}, ErrNoReadings
	}

	latest := series[0]
	for _, rec := range series[1:] {
		if rec.Timestamp.After(latest.Timestamp) {
			latest = rec
		}
	}
	return latest, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
