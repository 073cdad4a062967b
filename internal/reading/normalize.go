package reading

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Raw is an untyped record as delivered by a provider response or a storage
// row: a mapping of field names to values of unknown type and quality.
type Raw map[string]any

// Raw field names accepted by Normalize.
const (
	FieldTimestamp = "timestamp"
	FieldPM25      = "pm2_5"
	FieldPM10      = "pm10"
	FieldO3        = "o3"
	FieldNO2       = "no2"
	FieldAQI       = "aqi"
)

// Normalize validates and coerces a raw record into a Reading.
//
// Each pollutant field and the AQI field is checked independently: a missing,
// null, non-numeric or non-finite value makes that single field absent
// without discarding the record. Only a missing or unparseable timestamp
// rejects the whole record, since a reading without an instant cannot be
// aggregated at all. A record whose pollutant fields are all unusable still
// yields a Reading; downstream aggregation treats it as contributing nothing.
func Normalize(locationID string, raw Raw) (Reading, error) {
	ts, ok := raw[FieldTimestamp]
	if !ok || ts == nil {
		return Reading{}, ErrMissingTimestamp
	}

	instant, err := coerceTimestamp(ts)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{
		LocationID: locationID,
		Timestamp:  instant.UTC(),
		PM25:       numberField(raw, FieldPM25),
		PM10:       numberField(raw, FieldPM10),
		O3:         numberField(raw, FieldO3),
		NO2:        numberField(raw, FieldNO2),
	}

	if v := numberField(raw, FieldAQI); v != nil {
		aqi := int(math.Round(*v))
		if aqi >= MinAQI && aqi <= MaxAQI {
			r.AQI = &aqi
		}
	}

	return r, nil
}

// coerceTimestamp accepts the timestamp shapes the collectors and the
// history store produce: time.Time, RFC3339 strings and Unix seconds.
func coerceTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, ErrBadTimestamp
		}
		return parsed, nil
	default:
		if n, ok := coerceNumber(v); ok {
			return time.Unix(int64(n), 0), nil
		}
		return time.Time{}, ErrBadTimestamp
	}
}

// numberField returns a pointer to the finite numeric value of the named
// field, or nil when the field is absent or unusable.
func numberField(raw Raw, name string) *float64 {
	v, ok := raw[name]
	if !ok || v == nil {
		return nil
	}
	n, ok := coerceNumber(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
