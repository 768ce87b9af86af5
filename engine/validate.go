/*
validate.go - Single-day slot validation

PURPOSE:
  ValidateSlot is the single source of truth for whether one day's
  declared 60-minute window is acceptable. Per-day UI feedback, pattern
  statistics, and quarter application all reuse this one function; no
  other code re-derives validity.

CHECK ORDER (short-circuits on first failure):
  1. Location type selected
  2. Both times present and parseable as HH:mm
  3. Window is exactly 60 minutes
  4. Window inside the global 05:00-24:00 filing bounds
  5. Referenced location is registered
  6. Location is open that weekday
  7. Window inside the location's open hours (inclusive)

BOUNDS:
  The global end bound is 24:00 (1440 minutes), applied uniformly. A slot
  ending exactly at a location's closing time is valid (inclusive check).

PURITY:
  Stateless, deterministic, side-effect free. Callers pass the location
  in; a nil location means "not registered".
*/
package engine

import "fmt"

// =============================================================================
// GLOBAL SLOT CONSTRAINTS
// =============================================================================

const (
	// SlotMinutes is the mandatory window length.
	SlotMinutes = 60

	// EarliestSlotStart is the global lower bound for a slot start.
	EarliestSlotStart = TimeOfDay(5 * 60) // 05:00

	// LatestSlotEnd is the global upper bound for a slot end.
	LatestSlotEnd = TimeOfDay(24 * 60) // 24:00
)

// =============================================================================
// SLOT RESULT - Typed validation outcome, never an error
// =============================================================================

// SlotResult is the outcome of validating one day's slot. Reasons are
// athlete-facing strings surfaced verbatim as field-level feedback.
type SlotResult struct {
	Valid  bool
	Reason string
}

// ValidResult is the passing outcome.
func ValidResult() SlotResult { return SlotResult{Valid: true} }

// InvalidResult carries a human-readable failure reason.
func InvalidResult(reason string) SlotResult { return SlotResult{Reason: reason} }

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidateSlot validates one weekday's declared slot against the
// referenced location (nil if the athlete has not registered one) and
// the global constraints. Checks run in order and stop at the first
// failure.
func ValidateSlot(day Weekday, p DaySlotPattern, loc *Location) SlotResult {
	if p.LocationType == "" {
		return InvalidResult("Select a location")
	}

	if p.TimeStart == "" || p.TimeEnd == "" {
		return InvalidResult("Enter time")
	}
	start, err := ParseTimeOfDay(p.TimeStart)
	if err != nil {
		return InvalidResult("Invalid time format")
	}
	end, err := ParseTimeOfDay(p.TimeEnd)
	if err != nil {
		return InvalidResult("Invalid time format")
	}

	if minutes := end.Minutes() - start.Minutes(); minutes != SlotMinutes {
		return InvalidResult(fmt.Sprintf("Slot must be exactly 60 minutes (currently %d minutes)", minutes))
	}

	if start < EarliestSlotStart {
		return InvalidResult(fmt.Sprintf("Slot cannot start before %s", EarliestSlotStart))
	}
	if end > LatestSlotEnd {
		return InvalidResult(fmt.Sprintf("Slot cannot end after %s", LatestSlotEnd))
	}

	if loc == nil {
		return InvalidResult(fmt.Sprintf("%s location not set up", p.LocationType.Label()))
	}

	hours := loc.HoursOn(day)
	if !hours.IsOpen() {
		return InvalidResult(fmt.Sprintf("Location not available on %ss", day))
	}

	if start < *hours.Open || end > *hours.Close {
		return InvalidResult(fmt.Sprintf("Location available %s-%s on %ss", *hours.Open, *hours.Close, day))
	}

	return ValidResult()
}

// ValidateSlotWith looks the location up by the pattern day's type.
// Convenience for callers holding the athlete's location set.
func ValidateSlotWith(day Weekday, p DaySlotPattern, locations map[LocationType]*Location) SlotResult {
	return ValidateSlot(day, p, locations[p.LocationType])
}
