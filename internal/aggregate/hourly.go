// Package aggregate reduces canonical readings to time-bucketed summaries.
package aggregate

import (
	"fmt"

	"github.com/aireclaro/aireclaro/internal/reading"
	"github.com/aireclaro/aireclaro/internal/timewindow"
)

// Series is one 24-slot hourly series per pollutant. Slot 0 is the anchor
// hour, slot 23 the hour just before it wraps. A nil slot means no location
// contributed a reading for that hour; it is never rendered as zero.
type Series struct {
	AnchorHour int
	PM25       [24]*float64
	PM10       [24]*float64
	O3         [24]*float64
	NO2        [24]*float64
}

// Values returns the series for one pollutant.
func (s *Series) Values(p reading.Pollutant) [24]*float64 {
	switch p {
	case reading.PollutantPM25:
		return s.PM25
	case reading.PollutantPM10:
		return s.PM10
	case reading.PollutantO3:
		return s.O3
	case reading.PollutantNO2:
		return s.NO2
	}
	return [24]*float64{}
}

// HourLabels returns the zone-local wall-clock label of each slot,
// "05:00" through "04:00" for anchor 5.
func (s *Series) HourLabels() [24]string {
	var labels [24]string
	for i := 0; i < 24; i++ {
		labels[i] = fmt.Sprintf("%02d:00", (s.AnchorHour+i)%24)
	}
	return labels
}

// RotatedIndex maps a zone-local hour of day onto the rotated bucket index:
// the anchor hour becomes 0 and the hour before the anchor becomes 23.
func RotatedIndex(hour, anchor int) int {
	idx := (hour - anchor) % 24
	if idx < 0 {
		idx += 24
	}
	return idx
}

// hourBucket accumulates a running (sum, count) pair per pollutant.
type hourBucket struct {
	sum   [4]float64
	count [4]int
}

func (b *hourBucket) add(r reading.Reading) {
	for i, p := range reading.Pollutants() {
		if v, ok := r.Value(p); ok {
			b.sum[i] += v
			b.count[i]++
		}
	}
}

// Hourly groups the readings of a single location into rotated hour-of-day
// buckets and reduces each bucket to a per-pollutant mean. Readings outside
// the window are discarded; the bucket key is the reading's zone-local hour
// rotated by the anchor.
func Hourly(readings []reading.Reading, w timewindow.Window, anchorHour int) Series {
	var buckets [24]hourBucket

	for _, r := range readings {
		if !w.Contains(r.Timestamp) {
			continue
		}
		hour := r.Timestamp.In(w.Zone).Hour()
		buckets[RotatedIndex(hour, anchorHour)].add(r)
	}

	series := Series{AnchorHour: anchorHour}
	for slot := range buckets {
		b := &buckets[slot]
		for i := range reading.Pollutants() {
			if b.count[i] == 0 {
				continue
			}
			mean := b.sum[i] / float64(b.count[i])
			switch i {
			case 0:
				series.PM25[slot] = &mean
			case 1:
				series.PM10[slot] = &mean
			case 2:
				series.O3[slot] = &mean
			case 3:
				series.NO2[slot] = &mean
			}
		}
	}
	return series
}

// CrossLocationHourly merges per-location reading collections into one
// averaged hourly series. Each location is reduced to its own hourly means
// first; a slot's merged value is then the mean across the locations that
// had data for that hour. Locations without data for a slot do not count
// toward that slot's denominator, and a slot with no contributing location
// stays absent.
func CrossLocationHourly(perLocation map[string][]reading.Reading, w timewindow.Window, anchorHour int) Series {
	type acc struct {
		sum   float64
		count int
	}
	var merged [24][4]acc

	for _, readings := range perLocation {
		local := Hourly(readings, w, anchorHour)
		for slot := 0; slot < 24; slot++ {
			for i, p := range reading.Pollutants() {
				if v := local.Values(p)[slot]; v != nil {
					merged[slot][i].sum += *v
					merged[slot][i].count++
				}
			}
		}
	}

	series := Series{AnchorHour: anchorHour}
	for slot := 0; slot < 24; slot++ {
		for i := range reading.Pollutants() {
			a := merged[slot][i]
			if a.count == 0 {
				continue
			}
			mean := a.sum / float64(a.count)
			switch i {
			case 0:
				series.PM25[slot] = &mean
			case 1:
				series.PM10[slot] = &mean
			case 2:
				series.O3[slot] = &mean
			case 3:
				series.NO2[slot] = &mean
			}
		}
	}
	return series
}
