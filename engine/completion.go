/*
completion.go - Quarter progress derivation

PURPOSE:
  ComputeCompletion derives days_completed, completion_percentage and
  the ascending missing_dates list for a quarter from its per-day slot
  records. These are never stored facts of their own; every slot
  mutation recomputes them (see Reconcile in lifecycle.go).

PERCENTAGE:
  round(100 * days_completed / total_days), clamped to [0, 100]. The
  division runs on decimal.Decimal with half-up rounding so 45/91 days
  is reported as 49%, not 49.45 truncated float noise.
*/
package engine

import "github.com/shopspring/decimal"

// Completion is the derived progress view of one quarter.
type Completion struct {
	DaysCompleted        int
	TotalDays            int
	CompletionPercentage int
	MissingDates         []Date
}

// IsComplete reports whether every day of the quarter is filed and valid.
func (c Completion) IsComplete() bool {
	return c.TotalDays > 0 && c.DaysCompleted == c.TotalDays
}

// ComputeCompletion derives the quarter's progress from its slots.
// A quarter with total_days <= 0 yields the zero Completion rather than
// failing; an empty period is a data-integrity steady state.
func ComputeCompletion(quarter Quarter, slots map[Date]DailySlot) Completion {
	c := Completion{TotalDays: quarter.TotalDays, MissingDates: []Date{}}
	if quarter.TotalDays <= 0 {
		return c
	}

	for _, date := range quarter.Dates() {
		if slot, ok := slots[date]; ok && slot.IsComplete {
			c.DaysCompleted++
		} else {
			c.MissingDates = append(c.MissingDates, date)
		}
	}
	// Dates() walks the range ascending, so MissingDates is already ordered.

	c.CompletionPercentage = percentage(c.DaysCompleted, c.TotalDays)
	return c
}

// percentage computes round(100*completed/total) clamped to [0, 100].
func percentage(completed, total int) int {
	pct := decimal.NewFromInt(int64(completed) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	p := int(pct.IntPart())
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
