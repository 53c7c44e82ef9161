package util

import "time"

// NormalizeDay converts t to UTC and truncates it to midnight.
func NormalizeDay(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey identifies the UTC calendar day of t.
func DayKey(t time.Time) int64 {
    return NormalizeDay(t).Unix()
}

// AlignFromTo widens the range to whole UTC days.
func AlignFromTo(from, to time.Time) (time.Time, time.Time) {
    return NormalizeDay(from), NormalizeDay(to).AddDate(0, 0, 1)
}
