// Package reading defines the canonical air quality reading model and the
// normalization boundary that turns raw provider/storage records into it.
package reading

import (
	"errors"
	"time"
)

// Normalization errors.
var (
	ErrMissingTimestamp = errors.New("reading has no timestamp")
	ErrBadTimestamp     = errors.New("reading timestamp is not parseable")
)

// Pollutant identifies one of the tracked pollutant concentrations.
type Pollutant string

const (
	PollutantPM25 Pollutant = "pm2_5"
	PollutantPM10 Pollutant = "pm10"
	PollutantO3   Pollutant = "o3"
	PollutantNO2  Pollutant = "no2"
)

// Pollutants lists the tracked pollutants in display order.
func Pollutants() []Pollutant {
	return []Pollutant{PollutantPM25, PollutantPM10, PollutantO3, PollutantNO2}
}

// AQI bounds for the ordinal 1..5 scale.
const (
	MinAQI = 1
	MaxAQI = 5
)

// Reading is one timestamped set of pollutant measurements for a monitored
// location. Pollutant fields and AQI are nil when the source record did not
// carry a usable value; a Reading is immutable once constructed.
type Reading struct {
	LocationID string
	Timestamp  time.Time

	// Concentrations in µg/m³. Nil means absent, never zero.
	PM25 *float64
	PM10 *float64
	O3   *float64
	NO2  *float64

	// AQI is the ordinal 1..5 air quality index, nil when absent.
	AQI *int
}

// Value returns the concentration for the given pollutant.
func (r Reading) Value(p Pollutant) (float64, bool) {
	var v *float64
	switch p {
	case PollutantPM25:
		v = r.PM25
	case PollutantPM10:
		v = r.PM10
	case PollutantO3:
		v = r.O3
	case PollutantNO2:
		v = r.NO2
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// HasAnyPollutant reports whether at least one pollutant field is present.
func (r Reading) HasAnyPollutant() bool {
	return r.PM25 != nil || r.PM10 != nil || r.O3 != nil || r.NO2 != nil
}
