// Package anomaly detects unusual readings in a chronological series.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aireclaro/aireclaro/internal/reading"
)

// Kind distinguishes the two rule families.
type Kind string

const (
	// KindThreshold flags a single reading above an absolute limit.
	KindThreshold Kind = "threshold"
	// KindDelta flags an abrupt change between consecutive readings.
	KindDelta Kind = "delta"
)

// Event is one detected anomaly, ordered by the reading's timestamp.
type Event struct {
	Timestamp   time.Time
	Pollutant   reading.Pollutant
	Kind        Kind
	Value       float64
	Delta       float64 // signed change from the previous reading, delta events only
	Description string
}

// Absolute concentration limits (µg/m³) that flag a threshold event.
var thresholdLimits = map[reading.Pollutant]float64{
	reading.PollutantPM25: 35,
	reading.PollutantPM10: 50,
	reading.PollutantO3:   100,
	reading.PollutantNO2:  200,
}

// Consecutive-change limits (µg/m³) that flag a delta event.
var deltaLimits = map[reading.Pollutant]float64{
	reading.PollutantPM25: 20,
	reading.PollutantPM10: 25,
	reading.PollutantO3:   30,
	reading.PollutantNO2:  40,
}

var pollutantNames = map[reading.Pollutant]string{
	reading.PollutantPM25: "PM2.5",
	reading.PollutantPM10: "PM10",
	reading.PollutantO3:   "O3",
	reading.PollutantNO2:  "NO2",
}

// Scan walks the series once and emits threshold and delta events in
// timestamp order. The input is sorted chronologically first (the slice
// itself is not mutated), readings stamped after now are skipped as
// defensive protection against clock skew or forecast rows leaking in, and
// the first retained reading contributes no delta events. Delta comparison
// for a pollutant only happens when both the current and previous reading
// carry that field.
func Scan(series []reading.Reading, now time.Time) []Event {
	ordered := append([]reading.Reading(nil), series...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var events []Event
	var prev *reading.Reading

	for i := range ordered {
		r := ordered[i]
		if r.Timestamp.After(now) {
			continue
		}

		for _, p := range reading.Pollutants() {
			value, ok := r.Value(p)
			if !ok {
				continue
			}

			if value > thresholdLimits[p] {
				events = append(events, Event{
					Timestamp: r.Timestamp,
					Pollutant: p,
					Kind:      KindThreshold,
					Value:     value,
					Description: fmt.Sprintf("Unusually high %s concentration (%.1f µg/m³)",
						pollutantNames[p], value),
				})
			}

			if prev != nil {
				if prevValue, ok := prev.Value(p); ok {
					delta := value - prevValue
					if math.Abs(delta) > deltaLimits[p] {
						events = append(events, Event{
							Timestamp: r.Timestamp,
							Pollutant: p,
							Kind:      KindDelta,
							Value:     value,
							Delta:     delta,
							Description: fmt.Sprintf("Abrupt %s change (%+.1f µg/m³ since previous reading)",
								pollutantNames[p], delta),
						})
					}
				}
			}
		}

		prev = &ordered[i]
	}

	return events
}

// LastN returns the most recent n events; display consumers typically show
// only the tail of the scan.
func LastN(events []Event, n int) []Event {
	if n <= 0 || len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}
