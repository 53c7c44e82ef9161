package repository

import (
	"strings"
	"time"
)

// Interval is the history window a run fetches market data for.
// 1d and 5d count trading sessions; the rest are calendar windows.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval5d  Interval = "5d"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
	Interval6mo Interval = "6mo"
	Interval1y  Interval = "1y"
	Interval2y  Interval = "2y"
	Interval5y  Interval = "5y"
	Interval10y Interval = "10y"
	IntervalYTD Interval = "ytd"
	IntervalMax Interval = "max"
)

// Intervals lists every supported interval in display order.
var Intervals = []Interval{
	Interval1d, Interval5d, Interval1mo, Interval3mo, Interval6mo,
	Interval1y, Interval2y, Interval5y, Interval10y, IntervalYTD, IntervalMax,
}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	for _, v := range Intervals {
		if v == iv {
			return true
		}
	}
	return false
}

// DefaultInterval returns the default interval.
func DefaultInterval() Interval { return Interval1y }

// ParseInterval converts a raw string to an interval. Empty input yields the default.
func ParseInterval(s string) (Interval, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DefaultInterval(), true
	}
	iv := Interval(s)
	return iv, IsValidInterval(iv)
}

// Sessions returns how many trading sessions iv spans, or 0 for calendar windows.
func (iv Interval) Sessions() int {
	switch iv {
	case Interval1d:
		return 1
	case Interval5d:
		return 5
	default:
		return 0
	}
}

// Range returns the calendar [from, to] window ending at now.
// Callers with an exchange calendar should anchor Sessions intervals to it instead.
func (iv Interval) Range(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	switch iv {
	case Interval1d:
		return now.AddDate(0, 0, -1), now
	case Interval5d:
		return now.AddDate(0, 0, -5), now
	case Interval1mo:
		return now.AddDate(0, -1, 0), now
	case Interval3mo:
		return now.AddDate(0, -3, 0), now
	case Interval6mo:
		return now.AddDate(0, -6, 0), now
	case Interval2y:
		return now.AddDate(-2, 0, 0), now
	case Interval5y:
		return now.AddDate(-5, 0, 0), now
	case Interval10y:
		return now.AddDate(-10, 0, 0), now
	case IntervalYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), now
	case IntervalMax:
		return time.Unix(0, 0).UTC(), now
	default:
		return now.AddDate(-1, 0, 0), now
	}
}
