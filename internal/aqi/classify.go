// Package aqi classifies air quality index values into display categories.
//
// Two scales coexist and are deliberately kept apart: the ordinal 1..5 index
// reported per reading (Classify) and the continuous 0..500-style pollutant
// index used for heatmap cells and quick badges (ClassifyIndex). They use
// different thresholds and must not be conflated.
package aqi

import "github.com/aireclaro/aireclaro/internal/reading"

// Category describes one level of the ordinal 1..5 scale.
type Category struct {
	Level    int
	Label    string
	Color    string
	Advisory string
	Tips     []string
}

// categories is ordered by level; Classify indexes into it after clamping.
var categories = [5]Category{
	{
		Level:    1,
		Label:    "Good",
		Color:    "#16a34a",
		Advisory: "The air is suitable for outdoor activities.",
		Tips: []string{
			"Ideal conditions for outdoor exercise.",
			"No precautions needed.",
		},
	},
	{
		Level:    2,
		Label:    "Fair",
		Color:    "#84cc16",
		Advisory: "Air quality is acceptable; unusually sensitive people may notice mild discomfort.",
		Tips: []string{
			"If you are highly sensitive, limit prolonged intense effort.",
		},
	},
	{
		Level:    3,
		Label:    "Moderate",
		Color:    "#d97706",
		Advisory: "Air quality may affect sensitive groups.",
		Tips: []string{
			"People with asthma or COPD should carry their medication.",
			"Consider moderating outdoor exercise.",
		},
	},
	{
		Level:    4,
		Label:    "Poor",
		Color:    "#ea580c",
		Advisory: "The air is unhealthy; minimize exposure.",
		Tips: []string{
			"Reduce intense outdoor exercise.",
			"Wear a mask if you experience symptoms.",
		},
	},
	{
		Level:    5,
		Label:    "Very Poor",
		Color:    "#dc2626",
		Advisory: "Avoid outdoor activities and protect sensitive groups.",
		Tips: []string{
			"Stay indoors when possible.",
			"Use an air purifier or filtered ventilation.",
		},
	},
}

// Classify maps an ordinal AQI value to its category. Values outside [1,5]
// are clamped to the scale's ends, so the function is total.
func Classify(aqi int) Category {
	if aqi < 1 {
		aqi = 1
	}
	if aqi > 5 {
		aqi = 5
	}
	return categories[aqi-1]
}

// IndexBand describes one severity band of the continuous 0..500-style index.
type IndexBand struct {
	Label string
	Color string
}

// indexBands is scanned in order; the first matching lower bound wins.
// The last entry has lower bound 0 so any non-negative (or negative) value
// resolves to a band.
var indexBands = []struct {
	min  float64
	band IndexBand
}{
	{151, IndexBand{Label: "Very Unhealthy", Color: "#dc2626"}},
	{101, IndexBand{Label: "Unhealthy for Sensitive Groups", Color: "#d97706"}},
	{51, IndexBand{Label: "Moderate", Color: "#ea580c"}},
	{0, IndexBand{Label: "Good", Color: "#16a34a"}},
}

// ClassifyIndex maps a continuous index value to its severity band via an
// ordered threshold scan. Values below the lowest bound clamp to Good.
func ClassifyIndex(value float64) IndexBand {
	for _, b := range indexBands {
		if value >= b.min {
			return b.band
		}
	}
	return indexBands[len(indexBands)-1].band
}

// heatmapBands maps a concentration to a heatmap cell color class, scanned
// in order of increasing upper bound.
var heatmapBands = []struct {
	max   float64
	color string
}{
	{25, "green"},
	{50, "yellow"},
	{100, "orange"},
	{150, "red"},
}

// HeatmapColor returns the cell color for a concentration value. Values
// above the highest bound saturate to the darkest band.
func HeatmapColor(value float64) string {
	for _, b := range heatmapBands {
		if value <= b.max {
			return b.color
		}
	}
	return "dark-red"
}

// DailySummary is the advisory block for the day's headline numbers.
type DailySummary struct {
	// Category is nil when no AQI value was available.
	Category *Category
	// Dominant is the particulate with the higher current concentration.
	Dominant reading.Pollutant
}

// Summarize builds the daily advisory from the latest PM values and AQI.
// PM2.5 is reported dominant unless PM10 is present and exceeds it; an
// absent PM value never competes. An absent AQI leaves Category nil rather
// than defaulting to the bottom of the scale.
func Summarize(pm25, pm10 *float64, aqiValue *int) DailySummary {
	dominant := reading.PollutantPM25
	if pm10 != nil && (pm25 == nil || *pm10 > *pm25) {
		dominant = reading.PollutantPM10
	}

	s := DailySummary{Dominant: dominant}
	if aqiValue != nil {
		c := Classify(*aqiValue)
		s.Category = &c
	}
	return s
}
