/*
quarter.go - Filing period calculation

PURPOSE:
  Maps a (year, Q1..Q4) pair onto its concrete date range and builds a
  fresh Quarter with its derived invariants in place: inclusive day
  count, initial draft status, and the filing deadline.

DEADLINE:
  Whereabouts are filed in advance; the deadline is 15 days before the
  quarter starts.
*/
package engine

import "time"

// FilingDeadlineDays is how many days before quarter start filing is due.
const FilingDeadlineDays = 15

// QuarterPeriod returns the inclusive date range for a year's quarter.
func QuarterPeriod(year int, q QuarterName) (start, end Date) {
	switch q {
	case Q1:
		return NewDate(year, time.January, 1), NewDate(year, time.March, 31)
	case Q2:
		return NewDate(year, time.April, 1), NewDate(year, time.June, 30)
	case Q3:
		return NewDate(year, time.July, 1), NewDate(year, time.September, 30)
	default:
		return NewDate(year, time.October, 1), NewDate(year, time.December, 31)
	}
}

// NewQuarter builds a fresh quarter for the athlete and period with all
// derived fields initialized. Uniqueness per (athlete, year, quarter) is
// enforced at the persistence boundary.
func NewQuarter(id QuarterID, athleteID AthleteID, year int, q QuarterName) Quarter {
	start, end := QuarterPeriod(year, q)
	return Quarter{
		ID:             id,
		AthleteID:      athleteID,
		Year:           year,
		Quarter:        q,
		StartDate:      start,
		EndDate:        end,
		Status:         StatusDraft,
		TotalDays:      DaysBetween(start, end) + 1,
		FilingDeadline: start.AddDays(-FilingDeadlineDays),
	}
}
