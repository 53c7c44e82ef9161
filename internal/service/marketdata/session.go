package marketdata

import (
	"time"

	"github.com/scmhub/calendar"
)

const defaultOpen = 9*time.Hour + 30*time.Minute

// Session answers market-hours questions for one exchange.
type Session struct {
	cal *calendar.Calendar
	loc *time.Location
}

// NewSession loads the calendar for the given MIC, falling back to NYSE and then to plain New York time.
func NewSession(mic string) *Session {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal != nil {
		return &Session{cal: cal, loc: cal.Loc}
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Session{loc: loc}
}

// covers reports whether the calendar has holiday data for t's year.
func (s *Session) covers(t time.Time) bool {
	if s.cal == nil {
		return false
	}
	start, end := s.cal.Years()
	return t.Year() >= start && t.Year() <= end
}

// State returns "REGULAR" while the exchange is open and "CLOSED" otherwise.
func (s *Session) State(t time.Time) string {
	t = t.In(s.loc)
	if !s.covers(t) {
		mins := t.Hour()*60 + t.Minute()
		if isWeekday(t) && mins >= 9*60+30 && mins < 16*60 {
			return "REGULAR"
		}
		return "CLOSED"
	}
	if s.cal.IsOpen(t) {
		return "REGULAR"
	}
	return "CLOSED"
}

// IsTradingDay reports whether the exchange holds a session on t's local day.
func (s *Session) IsTradingDay(t time.Time) bool {
	t = t.In(s.loc)
	if !s.covers(t) {
		return isWeekday(t)
	}
	return s.cal.IsBusinessDay(t)
}

func (s *Session) openOffset() time.Duration {
	if s.cal != nil {
		if sess := s.cal.Session(); sess != nil && sess.Open > 0 {
			return sess.Open
		}
	}
	return defaultOpen
}

// RecentSessions returns the local day of the n-th most recent session that
// has opened at or before t. Weekends and holidays are skipped.
func (s *Session) RecentSessions(t time.Time, n int) time.Time {
	t = t.In(s.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	if !s.IsTradingDay(day) || t.Before(day.Add(s.openOffset())) {
		day = s.previousTradingDay(day)
	}
	for i := 1; i < n; i++ {
		day = s.previousTradingDay(day)
	}
	return day
}

func (s *Session) previousTradingDay(day time.Time) time.Time {
	day = day.AddDate(0, 0, -1)
	for !s.IsTradingDay(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
