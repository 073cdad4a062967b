// Package timewindow builds timezone-correct aggregation windows.
//
// All boundaries are resolved through the zone database (time.Date with a
// named *time.Location), never by adding fixed hour offsets, so windows stay
// correct across DST transitions and political zone changes.
package timewindow

import (
	"fmt"
	"time"
)

// DefaultZoneName is the reference zone for the monitored city.
const DefaultZoneName = "America/Bogota"

// Window is a closed interval [Start, End] of absolute instants, tagged with
// the zone its boundaries were derived in.
type Window struct {
	Start time.Time
	End   time.Time
	Zone  *time.Location
}

// Contains reports whether t falls inside the window (boundaries inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// LoadZone resolves a named IANA zone. An unknown identifier is a
// programming-contract violation and is surfaced eagerly.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return loc, nil
}

// CalendarDay returns the full zone-local day daysAgo days before ref:
// 00:00:00 through 23:59:59 of that day, as absolute instants.
func CalendarDay(ref time.Time, zone *time.Location, daysAgo int) Window {
	local := ref.In(zone)
	y, m, d := local.AddDate(0, 0, -daysAgo).Date()

	start := time.Date(y, m, d, 0, 0, 0, 0, zone)
	end := time.Date(y, m, d, 23, 59, 59, 0, zone)

	return Window{Start: start, End: end, Zone: zone}
}

// Yesterday returns the zone-local day before ref.
func Yesterday(ref time.Time, zone *time.Location) Window {
	return CalendarDay(ref, zone, 1)
}

// Shifted24h returns a 24-hour frame anchored at anchorHour instead of
// midnight: it starts at anchorHour:00:00 of the zone-local day before ref
// and ends one second before anchorHour of ref's zone-local day. With the
// default anchor 5 that is 05:00:00 yesterday through 04:59:59 today.
func Shifted24h(ref time.Time, zone *time.Location, anchorHour int) (Window, error) {
	if anchorHour < 0 || anchorHour > 23 {
		return Window{}, fmt.Errorf("anchor hour %d out of range [0,23]", anchorHour)
	}

	local := ref.In(zone)
	y, m, d := local.Date()

	end := time.Date(y, m, d, anchorHour, 0, 0, 0, zone).Add(-time.Second)
	py, pm, pd := local.AddDate(0, 0, -1).Date()
	start := time.Date(py, pm, pd, anchorHour, 0, 0, 0, zone)

	return Window{Start: start, End: end, Zone: zone}, nil
}

// LastDays returns the lookback window [ref-days, ref], used for history
// queries feeding anomaly scans and distributions.
func LastDays(ref time.Time, zone *time.Location, days int) Window {
	return Window{Start: ref.AddDate(0, 0, -days), End: ref, Zone: zone}
}
