package aggregate

import (
	"sort"
	"time"

	"github.com/aireclaro/aireclaro/internal/reading"
	"github.com/aireclaro/aireclaro/internal/stats"
	"github.com/aireclaro/aireclaro/internal/timewindow"
)

// MonthlyStats is one finalized calendar-month bucket: the full per-pollutant
// five-number summary plus the mean ordinal AQI. A pollutant summary with
// N==0 and a nil MeanAQI mean "no data", never zero.
type MonthlyStats struct {
	Month time.Month

	PM25 stats.Summary
	PM10 stats.Summary
	O3   stats.Summary
	NO2  stats.Summary

	MeanAQI *float64

	// Samples is the number of retained readings in the bucket.
	Samples int

	// Partial marks the in-progress current month, surfaced only when no
	// completed month has data.
	Partial bool
}

// monthSample collects the raw per-pollutant values of one month bucket,
// created lazily when the first reading maps into it.
type monthSample struct {
	values  [4][]float64
	aqi     []float64
	samples int
}

// Monthly groups readings into calendar-month buckets (month of the
// reading's zone-local timestamp) and reduces each bucket to order
// statistics per pollutant plus the mean AQI.
//
// By default only months strictly before ref's current zone-local month are
// surfaced, so an in-progress month never skews the report. When no prior
// month has any data but the current one does, the current month is returned
// instead, flagged Partial. Results are ordered January first.
func Monthly(readings []reading.Reading, w timewindow.Window, ref time.Time) []MonthlyStats {
	buckets := make(map[time.Month]*monthSample)

	for _, r := range readings {
		if !w.Contains(r.Timestamp) {
			continue
		}
		month := r.Timestamp.In(w.Zone).Month()
		b := buckets[month]
		if b == nil {
			b = &monthSample{}
			buckets[month] = b
		}
		b.samples++
		for i, p := range reading.Pollutants() {
			if v, ok := r.Value(p); ok {
				b.values[i] = append(b.values[i], v)
			}
		}
		if r.AQI != nil {
			b.aqi = append(b.aqi, float64(*r.AQI))
		}
	}

	currentMonth := ref.In(w.Zone).Month()

	var months []time.Month
	for m := range buckets {
		if m < currentMonth {
			months = append(months, m)
		}
	}

	// No completed month has data: fall back to the in-progress month.
	partial := false
	if len(months) == 0 {
		if _, ok := buckets[currentMonth]; ok {
			months = append(months, currentMonth)
			partial = true
		}
	}

	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	results := make([]MonthlyStats, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		ms := MonthlyStats{
			Month:   m,
			PM25:    stats.Compute(b.values[0]),
			PM10:    stats.Compute(b.values[1]),
			O3:      stats.Compute(b.values[2]),
			NO2:     stats.Compute(b.values[3]),
			Samples: b.samples,
			Partial: partial,
		}
		if mean, ok := stats.Mean(b.aqi); ok {
			ms.MeanAQI = &mean
		}
		results = append(results, ms)
	}
	return results
}
