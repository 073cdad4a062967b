// Package analytics assembles stored readings into the reports served by the
// API: monthly order statistics, city-wide hourly trends, anomaly feeds, and
// AQI summaries.
package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aireclaro/aireclaro/internal/aggregate"
	"github.com/aireclaro/aireclaro/internal/anomaly"
	"github.com/aireclaro/aireclaro/internal/aqi"
	"github.com/aireclaro/aireclaro/internal/history"
	"github.com/aireclaro/aireclaro/internal/location"
	"github.com/aireclaro/aireclaro/internal/reading"
	"github.com/aireclaro/aireclaro/internal/timewindow"
)

// ErrInsufficientData is returned when a report has no underlying readings at
// all. Individual empty buckets inside an otherwise populated report are not
// an error; they surface as absent values.
var ErrInsufficientData = errors.New("analytics: insufficient data")

// DefaultAnchorHour starts the shifted observation day at 05:00 local time,
// so the overnight hours stay attached to the evening they follow.
const DefaultAnchorHour = 5

// ServiceConfig holds configuration for the analytics service.
type ServiceConfig struct {
	// Repository is the reading store.
	Repository history.Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// Zone is the reporting timezone (default: America/Bogota).
	Zone *time.Location

	// AnchorHour rotates the hourly trend day (default: 5).
	AnchorHour int

	// TrendConcurrency bounds the per-location fan-out when building
	// city-wide trends (default: 4).
	TrendConcurrency int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service computes analytics over the reading history.
type Service struct {
	repo        history.Repository
	logger      zerolog.Logger
	zone        *time.Location
	anchorHour  int
	concurrency int
	now         func() time.Time
}

// NewService creates a new analytics service.
func NewService(cfg ServiceConfig) (*Service, error) {
	zone := cfg.Zone
	if zone == nil {
		var err error
		zone, err = timewindow.LoadZone(timewindow.DefaultZoneName)
		if err != nil {
			return nil, err
		}
	}

	anchorHour := cfg.AnchorHour
	if anchorHour == 0 {
		anchorHour = DefaultAnchorHour
	}

	concurrency := cfg.TrendConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:        cfg.Repository,
		logger:      cfg.Logger,
		zone:        zone,
		anchorHour:  anchorHour,
		concurrency: concurrency,
		now:         now,
	}, nil
}

// Current returns the latest reading of a location together with its AQI
// category and dominant pollutant.
type Current struct {
	Reading reading.Reading
	Summary aqi.DailySummary
}

// GetCurrent returns the most recent reading of one location, classified.
func (s *Service) GetCurrent(ctx context.Context, locationID string) (*Current, error) {
	if _, err := location.ByID(locationID); err != nil {
		return nil, err
	}

	latest, err := s.repo.Latest(ctx, locationID)
	if err != nil {
		if errors.Is(err, history.ErrNoReadings) {
			return nil, ErrInsufficientData
		}
		return nil, err
	}

	return &Current{
		Reading: latest,
		Summary: aqi.Summarize(latest.PM25, latest.PM10, latest.AQI),
	}, nil
}

// MonthlyReport reduces a location's history to calendar-month order
// statistics. The in-progress month is excluded unless it is the only month
// with data, in which case it is returned flagged partial.
func (s *Service) MonthlyReport(ctx context.Context, locationID string) ([]aggregate.MonthlyStats, error) {
	if _, err := location.ByID(locationID); err != nil {
		return nil, err
	}

	now := s.now()
	year := now.In(s.zone).Year()
	w := timewindow.Window{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, s.zone),
		End:   now,
		Zone:  s.zone,
	}

	readings, err := s.repo.List(ctx, locationID, history.QueryOptions{Since: w.Start, Until: w.End})
	if err != nil {
		return nil, err
	}

	months := aggregate.Monthly(readings, w, now)
	if len(months) == 0 {
		return nil, ErrInsufficientData
	}
	return months, nil
}

// HourlyTrends builds the city-wide hourly series over the shifted
// observation day: each catalog location is fetched and reduced on its own
// goroutine, then the per-location means are averaged. A location whose fetch
// fails contributes nothing; it never zeroes the city mean.
func (s *Service) HourlyTrends(ctx context.Context) (*aggregate.Series, error) {
	w, err := timewindow.Shifted24h(s.now(), s.zone, s.anchorHour)
	if err != nil {
		return nil, err
	}

	perLocation := s.fetchAll(ctx, w.Start, w.End)
	if len(perLocation) == 0 {
		return nil, ErrInsufficientData
	}

	series := aggregate.CrossLocationHourly(perLocation, w, s.anchorHour)
	return &series, nil
}

// fetchAll loads the window's readings for every catalog location with
// bounded concurrency. Locations that fail or come back empty are omitted
// from the result.
func (s *Service) fetchAll(ctx context.Context, since, until time.Time) map[string][]reading.Reading {
	points := location.All()

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		perLocation = make(map[string][]reading.Reading, len(points))
	)
	sem := make(chan struct{}, s.concurrency)

	for _, p := range points {
		wg.Add(1)
		go func(p location.Point) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			readings, err := s.repo.List(ctx, p.ID, history.QueryOptions{Since: since, Until: until})
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("location_id", p.ID).
					Msg("skipping location in city-wide trend")
				return
			}
			if len(readings) == 0 {
				return
			}

			mu.Lock()
			perLocation[p.ID] = readings
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	return perLocation
}

// Anomalies scans a location's recent history for threshold breaches and
// abrupt hour-over-hour swings.
func (s *Service) Anomalies(ctx context.Context, locationID string, days int) ([]anomaly.Event, error) {
	if _, err := location.ByID(locationID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 1
	}

	now := s.now()
	w := timewindow.LastDays(now, s.zone, days)

	readings, err := s.repo.List(ctx, locationID, history.QueryOptions{Since: w.Start, Until: w.End})
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrInsufficientData
	}

	return anomaly.Scan(readings, now), nil
}

// AQIDistribution counts readings per AQI category over the last N days.
func (s *Service) AQIDistribution(ctx context.Context, locationID string, days int) ([5]int, error) {
	if _, err := location.ByID(locationID); err != nil {
		return [5]int{}, err
	}
	if days <= 0 {
		days = 7
	}

	w := timewindow.LastDays(s.now(), s.zone, days)

	readings, err := s.repo.List(ctx, locationID, history.QueryOptions{Since: w.Start, Until: w.End})
	if err != nil {
		return [5]int{}, err
	}
	if len(readings) == 0 {
		return [5]int{}, ErrInsufficientData
	}

	return aggregate.AQIDistribution(readings, w), nil
}

// DailySummary classifies yesterday's readings of one location: the mean AQI
// category of the zone-local previous day plus the dominant pollutant.
func (s *Service) DailySummary(ctx context.Context, locationID string) (*aqi.DailySummary, error) {
	if _, err := location.ByID(locationID); err != nil {
		return nil, err
	}

	w := timewindow.Yesterday(s.now(), s.zone)

	readings, err := s.repo.List(ctx, locationID, history.QueryOptions{Since: w.Start, Until: w.End})
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrInsufficientData
	}

	var (
		pm25Sum, pm10Sum     float64
		pm25Count, pm10Count int
		aqiSum, aqiCount     int
	)
	for _, r := range readings {
		if r.PM25 != nil {
			pm25Sum += *r.PM25
			pm25Count++
		}
		if r.PM10 != nil {
			pm10Sum += *r.PM10
			pm10Count++
		}
		if r.AQI != nil {
			aqiSum += *r.AQI
			aqiCount++
		}
	}

	var pm25, pm10 *float64
	var meanAQI *int
	if pm25Count > 0 {
		v := pm25Sum / float64(pm25Count)
		pm25 = &v
	}
	if pm10Count > 0 {
		v := pm10Sum / float64(pm10Count)
		pm10 = &v
	}
	if aqiCount > 0 {
		// Round to the nearest ordinal category.
		v := (aqiSum + aqiCount/2) / aqiCount
		meanAQI = &v
	}

	summary := aqi.Summarize(pm25, pm10, meanAQI)
	return &summary, nil
}

// Export lists a location's raw readings over the last N days, for the CSV
// export endpoint.
func (s *Service) Export(ctx context.Context, locationID string, days int) ([]reading.Reading, error) {
	if _, err := location.ByID(locationID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	w := timewindow.LastDays(s.now(), s.zone, days)

	readings, err := s.repo.List(ctx, locationID, history.QueryOptions{Since: w.Start, Until: w.End})
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrInsufficientData
	}
	return readings, nil
}

// Zone exposes the reporting timezone, for presentation layers that format
// timestamps.
func (s *Service) Zone() *time.Location {
	return s.zone
}
