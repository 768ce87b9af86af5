/*
apply.go - Expanding a weekly pattern onto a quarter's dates

PURPOSE:
  Apply turns the recurring 7-day intent into concrete DailySlot records
  for every date of a quarter. Two modes:

    FillOnly:  dates already present in the existing slot map are left
               byte-for-byte untouched; only absent dates are filled.
               Monotone: never removes or mutates existing data.
    Overwrite: every date in range is replaced from the pattern.
               Idempotent: applying twice equals applying once.

DERIVED COMPLETENESS:
  Each produced slot's is_complete re-runs ValidateSlot for its weekday.
  An invalid pattern day still produces a slot (the quarter shows a
  concrete, correctable record) with is_complete = false.

ATOMICITY:
  Apply computes the full result in one synchronous pass and performs no
  I/O. The caller persists the returned map in a single atomic write so
  partial application is never user-visible.
*/
package engine

// =============================================================================
// APPLY MODE
// =============================================================================

type ApplyMode string

const (
	// FillOnly fills dates with no existing record and leaves the rest alone.
	FillOnly ApplyMode = "fill"

	// Overwrite replaces every date in the quarter from the pattern.
	Overwrite ApplyMode = "overwrite"
)

// ParseApplyMode validates a mode string.
func ParseApplyMode(s string) (ApplyMode, bool) {
	switch ApplyMode(s) {
	case FillOnly, Overwrite:
		return ApplyMode(s), true
	}
	return "", false
}

// =============================================================================
// QUARTER APPLIER
// =============================================================================

// Apply expands the pattern across every date of the quarter and returns
// the resulting slot map. The input map is never mutated.
func Apply(week WeeklyPattern, quarter Quarter, existing map[Date]DailySlot, mode ApplyMode, locations map[LocationType]*Location) map[Date]DailySlot {
	result := make(map[Date]DailySlot, len(existing)+quarter.TotalDays)
	for d, s := range existing {
		result[d] = s
	}

	for _, date := range quarter.Dates() {
		if mode == FillOnly {
			if _, ok := result[date]; ok {
				continue
			}
		}
		result[date] = SlotFromPattern(quarter.ID, date, week.Day(date.Weekday()), locations)
	}
	return result
}

// SlotFromPattern derives the DailySlot for one date from a pattern day,
// denormalizing the registered location's details when present.
func SlotFromPattern(quarterID QuarterID, date Date, p DaySlotPattern, locations map[LocationType]*Location) DailySlot {
	slot := DailySlot{
		QuarterID: quarterID,
		Date:      date,
		Slot: SlotWindow{
			StartTime:    p.TimeStart,
			EndTime:      p.TimeEnd,
			LocationType: p.LocationType,
		},
	}

	if loc := locations[p.LocationType]; loc != nil {
		slot.Slot.LocationID = loc.ID
		slot.Slot.LocationName = loc.Name
		slot.Slot.LocationAddress = loc.Address
	}

	slot.IsComplete = ValidateSlotWith(date.Weekday(), p, locations).Valid
	return slot
}
