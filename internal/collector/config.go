// Package collector gathers pollution readings from the provider and feeds
// them into the history store.
package collector

import (
	"time"

	"github.com/aireclaro/aireclaro/internal/location"
)

// Config holds configuration for collection runs.
type Config struct {
	// Points are the monitoring points to collect. If empty, the full
	// catalog is used.
	Points []location.Point

	// Concurrency is the number of concurrent point fetches.
	// Default: 3
	Concurrency int

	// Timeout bounds the provider calls for a single point.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is the pause between scheduled collection runs.
	// Default: 1 hour
	Interval time.Duration
}

// DefaultConfig returns the default collection configuration: the full
// catalog on an hourly cadence.
func DefaultConfig() Config {
	return Config{
		Points:      location.All(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		Interval:    time.Hour,
	}
}

func (c Config) withDefaults() Config {
	if len(c.Points) == 0 {
		c.Points = location.All()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Interval == 0 {
		c.Interval = time.Hour
	}
	return c
}
