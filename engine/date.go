package engine

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DATE - Calendar date at day granularity (this IS a calendar system)
// =============================================================================

// Date is a plain calendar date in the athlete's local calendar. It is a
// value type safe to use as a map key; slot maps are keyed by Date.
// Deliberately not a time.Time: whereabouts rules operate on wall-clock
// dates, and a timezone-carrying instant invites off-by-one-day bugs at
// quarter boundaries.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate constructs a date. Out-of-range components are normalized the
// way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool { return d.time().Before(other.time()) }
func (d Date) After(other Date) bool  { return d.time().After(other.time()) }
func (d Date) Equal(other Date) bool  { return d == other }
func (d Date) IsZero() bool           { return d == Date{} }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.time().AddDate(0, 0, n)) }

// Weekday returns the pattern weekday (Monday-first) for this date.
func (d Date) Weekday() Weekday {
	switch d.time().Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// DaysBetween returns the signed day count from from to to.
func DaysBetween(from, to Date) int {
	return int(to.time().Sub(from.time()).Hours() / 24)
}

// SortDates orders dates ascending in place.
func SortDates(dates []Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

// =============================================================================
// CLOCK - Injected "today" source
// =============================================================================

// Clock supplies the current date in the athlete's local calendar.
// The lifecycle lock transition and missing-date framing depend on
// "today"; injecting it keeps the engine deterministic under test.
type Clock interface {
	Today() Date
}

// SystemClock reads the process-local wall clock.
type SystemClock struct{}

func (SystemClock) Today() Date { return DateOf(time.Now()) }

// FixedClock always returns the same date. For tests and replays.
type FixedClock struct {
	Date Date
}

func (c FixedClock) Today() Date { return c.Date }
