package collector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aireclaro/aireclaro/internal/history"
	"github.com/aireclaro/aireclaro/internal/location"
	"github.com/aireclaro/aireclaro/internal/reading"
)

// Provider fetches pollution data for a coordinate.
type Provider interface {
	// Current fetches the latest record for a point.
	Current(ctx context.Context, locationID string, lat, lon float64) (reading.Reading, error)

	// History fetches the records of a point between start and end.
	History(ctx context.Context, locationID string, lat, lon float64, start, end time.Time) ([]reading.Reading, error)
}

// ServiceConfig holds configuration for creating a Service.
type ServiceConfig struct {
	Config     Config
	Provider   Provider
	Repository history.Repository
	Logger     zerolog.Logger
}

// Service runs collection jobs: a current snapshot per point on a schedule,
// and on-demand history backfills.
type Service struct {
	config   Config
	provider Provider
	repo     history.Repository
	logger   zerolog.Logger

	metrics *Metrics
}

// Metrics tracks collection job statistics.
type Metrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	SuccessfulRuns  int64
	FailedPoints    int64
	ReadingsStored  int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// NewService creates a new collection service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		config:   cfg.Config.withDefaults(),
		provider: cfg.Provider,
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		metrics:  &Metrics{},
	}
}

// Result contains the outcome of one collection run.
type Result struct {
	JobID       string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
	Stored      int
	Errors      []PointError
}

// PointError records a failed point within an otherwise continuing run.
type PointError struct {
	LocationID string
	Error      string
}

// Collect fetches the current reading of every configured point and stores
// the results. A failed point is logged and skipped; the run keeps going.
func (s *Service) Collect(ctx context.Context) *Result {
	return s.run(ctx, "collect", func(ctx context.Context, p location.Point) ([]reading.Reading, error) {
		rec, err := s.provider.Current(ctx, p.ID, p.Latitude, p.Longitude)
		if err != nil {
			return nil, err
		}
		return []reading.Reading{rec}, nil
	})
}

// Backfill fetches the trailing history of every configured point. The
// store's duplicate handling makes re-runs over overlapping ranges safe.
func (s *Service) Backfill(ctx context.Context, days int) *Result {
	if days <= 0 {
		days = 5
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	return s.run(ctx, "backfill", func(ctx context.Context, p location.Point) ([]reading.Reading, error) {
		return s.provider.History(ctx, p.ID, p.Latitude, p.Longitude, start, end)
	})
}

type pointResult struct {
	locationID string
	stored     int
	err        error
}

func (s *Service) run(ctx context.Context, jobType string, fetch func(context.Context, location.Point) ([]reading.Reading, error)) *Result {
	startTime := time.Now()
	result := &Result{
		JobID:       uuid.New().String(),
		StartTime:   startTime,
		TotalPoints: len(s.config.Points),
	}

	logger := s.logger.With().
		Str("job_id", result.JobID).
		Str("job_type", jobType).
		Logger()

	logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", s.config.Concurrency).
		Msg("starting collection job")

	pointsChan := make(chan location.Point, len(s.config.Points))
	resultsChan := make(chan pointResult, len(s.config.Points))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, pointsChan, resultsChan, fetch)
		}()
	}

	for _, p := range s.config.Points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, PointError{
				LocationID: pr.locationID,
				Error:      pr.err.Error(),
			})
			continue
		}
		result.Successful++
		result.Stored += pr.stored
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	s.updateMetrics(result)

	logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("stored", result.Stored).
		Msg("collection job completed")

	return result
}

func (s *Service) worker(ctx context.Context, points <-chan location.Point, results chan<- pointResult, fetch func(context.Context, location.Point) ([]reading.Reading, error)) {
	for p := range points {
		select {
		case <-ctx.Done():
			results <- pointResult{locationID: p.ID, err: ctx.Err()}
		default:
			results <- s.collectPoint(ctx, p, fetch)
		}
	}
}

func (s *Service) collectPoint(ctx context.Context, p location.Point, fetch func(context.Context, location.Point) ([]reading.Reading, error)) pointResult {
	pointCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	readings, err := fetch(pointCtx, p)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location_id", p.ID).
			Msg("point collection failed")
		return pointResult{locationID: p.ID, err: err}
	}

	if err := s.repo.InsertBatch(pointCtx, readings); err != nil {
		s.logger.Error().
			Err(err).
			Str("location_id", p.ID).
			Msg("storing readings failed")
		return pointResult{locationID: p.ID, err: err}
	}

	return pointResult{locationID: p.ID, stored: len(readings)}
}

// RunScheduled collects on the configured interval until the context is
// cancelled. The first run happens immediately.
func (s *Service) RunScheduled(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.Collect(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduled collection stopped")
			return
		case <-ticker.C:
			s.Collect(ctx)
		}
	}
}

func (s *Service) updateMetrics(result *Result) {
	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()

	s.metrics.TotalRuns++
	if result.Failed == 0 {
		s.metrics.SuccessfulRuns++
	}
	s.metrics.FailedPoints += int64(result.Failed)
	s.metrics.ReadingsStored += int64(result.Stored)
	s.metrics.LastRunAt = result.EndTime
	s.metrics.LastRunDuration = result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (s *Service) GetMetrics() Metrics {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()

	return Metrics{
		TotalRuns:       s.metrics.TotalRuns,
		SuccessfulRuns:  s.metrics.SuccessfulRuns,
		FailedPoints:    s.metrics.FailedPoints,
		ReadingsStored:  s.metrics.ReadingsStored,
		LastRunAt:       s.metrics.LastRunAt,
		LastRunDuration: s.metrics.LastRunDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for the ops endpoint.
func (s *Service) MetricsSnapshot() map[string]interface{} {
	m := s.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_runs":   m.SuccessfulRuns,
		"failed_points":     m.FailedPoints,
		"readings_stored":   m.ReadingsStored,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
	}
}
