/*
extract.go - Reconstructing a weekly pattern from filed days

PURPOSE:
  Extract is the inverse of Apply: given a quarter's saved slots, infer
  the recurring 7-day pattern behind them, if one exists. Used to seed
  the pattern editor from a quarter filed day-by-day.

MAJORITY VOTE:
  Slots are grouped by weekday. For each weekday the most frequent
  (location_type, time_start, time_end) triple wins, but only with a
  strict majority of that weekday's slots behind it. Disagreement or an
  empty weekday falls back to the default day (home 06:00-07:00), the
  same state a fresh pattern starts in, rather than failing the whole
  extraction.

NO RESULT:
  A quarter with no slots at all returns ErrNoSlots. That is an expected
  steady state for a new quarter, not a failure.
*/
package engine

// slotTriple is the vote cast by one filed day.
type slotTriple struct {
	LocationType LocationType
	TimeStart    string
	TimeEnd      string
}

// Extract infers a weekly pattern from a quarter's saved slots.
// Returns ErrNoSlots when the map is empty.
func Extract(slots map[Date]DailySlot) (WeeklyPattern, error) {
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	votes := make(map[Weekday]map[slotTriple]int, 7)
	totals := make(map[Weekday]int, 7)
	for date, slot := range slots {
		if !slot.Slot.IsSet() {
			continue // unset days carry no recurring intent
		}
		day := date.Weekday()
		if votes[day] == nil {
			votes[day] = make(map[slotTriple]int)
		}
		t := slotTriple{
			LocationType: slot.Slot.LocationType,
			TimeStart:    slot.Slot.StartTime,
			TimeEnd:      slot.Slot.EndTime,
		}
		votes[day][t]++
		totals[day]++
	}

	week := NewWeeklyPattern()
	for _, day := range Weekdays {
		if t, ok := majority(votes[day], totals[day]); ok {
			week[day] = DaySlotPattern{
				LocationType: t.LocationType,
				TimeStart:    t.TimeStart,
				TimeEnd:      t.TimeEnd,
			}
		}
		// otherwise keep the default day
	}
	return week, nil
}

// majority returns the winning triple when it holds a strict majority
// of the weekday's votes.
func majority(tally map[slotTriple]int, total int) (slotTriple, bool) {
	var best slotTriple
	bestCount := 0
	for t, n := range tally {
		if n > bestCount {
			best, bestCount = t, n
		}
	}
	if bestCount*2 > total && bestCount > 0 {
		return best, true
	}
	return slotTriple{}, false
}
