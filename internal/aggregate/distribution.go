package aggregate

import (
	"github.com/aireclaro/aireclaro/internal/reading"
	"github.com/aireclaro/aireclaro/internal/timewindow"
)

// AQIDistribution counts readings per ordinal AQI category 1..5 inside the
// window. Index 0 holds category 1. Readings without an AQI value are
// skipped; the ordinal field is validated at normalization so no further
// range check is needed here.
func AQIDistribution(readings []reading.Reading, w timewindow.Window) [5]int {
	var counts [5]int
	for _, r := range readings {
		if r.AQI == nil || !w.Contains(r.Timestamp) {
			continue
		}
		counts[*r.AQI-1]++
	}
	return counts
}
