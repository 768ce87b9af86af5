/*
pattern.go - Weekly pattern editing and statistics

PURPOSE:
  PatternEngine owns one WeeklyPattern plus the athlete's registered
  slot locations (home/training/gym) and exposes the bulk edit
  operations the filing screens are built on: copy one day across
  the week, reset everything, and derive aggregate statistics.

MUTATION VS VALIDATION:
  SetDay and the copy operations never validate. Validity is a derived,
  read-only view (Stats/Validate) so the athlete can type half-finished
  input without the engine fighting back.

STATS:
  CompletedDays counts days with both times set regardless of validity.
  ValidDays/InvalidDays partition the week by ValidateSlot. The three
  location counters tally location_type regardless of validity.
  ValidDays == 7 gates template saving.
*/
package engine

// =============================================================================
// PATTERN ENGINE
// =============================================================================

// PatternEngine holds one weekly pattern under edit, plus the location
// set validation runs against. Locations are read-only here; they are
// mutated through the location collaborators.
type PatternEngine struct {
	week      WeeklyPattern
	locations map[LocationType]*Location
}

// NewPatternEngine starts from the default week (home 06:00-07:00
// every day).
func NewPatternEngine(locations map[LocationType]*Location) *PatternEngine {
	return &PatternEngine{week: NewWeeklyPattern(), locations: locations}
}

// NewPatternEngineFrom starts from an existing pattern (deep-copied, so
// edits never leak back into the caller's value).
func NewPatternEngineFrom(week WeeklyPattern, locations map[LocationType]*Location) *PatternEngine {
	return &PatternEngine{week: week.Clone(), locations: locations}
}

// Week returns a deep copy of the current pattern.
func (e *PatternEngine) Week() WeeklyPattern { return e.week.Clone() }

// Day returns one day's pattern.
func (e *PatternEngine) Day(d Weekday) DaySlotPattern { return e.week.Day(d) }

// =============================================================================
// EDIT OPERATIONS
// =============================================================================

// SetDay replaces one day's pattern. No validation is performed here.
func (e *PatternEngine) SetDay(d Weekday, p DaySlotPattern) {
	e.week[d] = p
}

// CopyDayTo overwrites each target day with a copy of the source day.
// The source day is never a target; self-copies are filtered out.
func (e *PatternEngine) CopyDayTo(source Weekday, targets ...Weekday) {
	src := e.week.Day(source)
	for _, t := range targets {
		if t == source {
			continue
		}
		e.week[t] = src
	}
}

// CopyToWeekdays copies Monday's pattern to Tuesday through Friday.
func (e *PatternEngine) CopyToWeekdays() {
	e.CopyDayTo(Monday, Tuesday, Wednesday, Thursday, Friday)
}

// CopyToWeekends copies Saturday's pattern to Sunday.
func (e *PatternEngine) CopyToWeekends() {
	e.CopyDayTo(Saturday, Sunday)
}

// CopyAllFromMonday copies Monday's pattern to every other day.
func (e *PatternEngine) CopyAllFromMonday() {
	e.CopyDayTo(Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday)
}

// ClearAll resets every day to the default pattern, the same state a
// freshly created week starts in.
func (e *PatternEngine) ClearAll() {
	e.week = NewWeeklyPattern()
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// PatternStats summarizes the week for progress badges and gating.
type PatternStats struct {
	CompletedDays int
	ValidDays     int
	InvalidDays   int
	HomeCount     int
	TrainingCount int
	GymCount      int
}

// Stats derives the aggregate statistics for the current week.
func (e *PatternEngine) Stats() PatternStats {
	return ComputeStats(e.week, e.locations)
}

// Validate runs the slot validator for every day of the week.
func (e *PatternEngine) Validate() map[Weekday]SlotResult {
	out := make(map[Weekday]SlotResult, 7)
	for _, d := range Weekdays {
		out[d] = ValidateSlotWith(d, e.week.Day(d), e.locations)
	}
	return out
}

// FullyValid reports whether all seven days pass validation. This is
// the single boolean surfaced to the UI and the gate for template saves.
func (e *PatternEngine) FullyValid() bool {
	return e.Stats().ValidDays == 7
}

// ComputeStats is the standalone form of Stats, for callers that hold a
// pattern without constructing an engine around it.
func ComputeStats(week WeeklyPattern, locations map[LocationType]*Location) PatternStats {
	var s PatternStats
	for _, d := range Weekdays {
		p := week.Day(d)

		if p.IsSet() {
			s.CompletedDays++
		}

		if ValidateSlotWith(d, p, locations).Valid {
			s.ValidDays++
		} else {
			s.InvalidDays++
		}

		switch p.LocationType {
		case LocationHome:
			s.HomeCount++
		case LocationTraining:
			s.TrainingCount++
		case LocationGym:
			s.GymCount++
		}
	}
	return s
}
