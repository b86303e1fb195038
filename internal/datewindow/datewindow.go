// Package datewindow computes the "yesterday" reporting window in a fixed
// local timezone.
package datewindow

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "America/New_York"
	DateLayout      = "2006-01-02"
)

// Window spans from yesterday's local midnight to today's.
type Window struct {
	Start time.Time
	End   time.Time
}

// New anchors the window on the local midnight at or before now. Start is
// derived from the calendar date, not by subtracting 24h, so the window is
// 23 or 25 hours long across DST transitions.
func New(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	y, m, d := local.Date()

	return Window{
		Start: time.Date(y, m, d-1, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 0, 0, 0, 0, loc),
	}
}

// Contains reports whether t falls strictly between the two midnights.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.Start) && t.Before(w.End)
}

func (w Window) StartDate() string {
	return w.Start.Format(DateLayout)
}

func (w Window) EndDate() string {
	return w.End.Format(DateLayout)
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
