/*
Package engine provides the quarter and pattern compliance engine.

PURPOSE:
  This package contains the pure domain types and algorithms for WADA-style
  whereabouts filing: for every day of a 90-day quarter an athlete declares
  one 60-minute window at a registered location. The engine validates slots,
  expands recurring weekly patterns across a quarter, reconstructs patterns
  from filed days, and tracks quarter completion and lifecycle.

KEY CONCEPTS IN THIS FILE (types.go):
  - Weekday/LocationType: Explicit enums (never derived from raw strings)
  - TimeOfDay: Minutes since midnight, parsed from "HH:mm"
  - DaySlotPattern/WeeklyPattern: The recurring 7-day declaration intent
  - DailySlot: The persisted record for one concrete calendar date
  - Quarter/Template: Filing period and reusable named patterns

DESIGN PRINCIPLES:
  1. Purity: Engine functions take values in and return values out.
     No ambient state, no I/O, no wall-clock reads (see Clock in date.go).
  2. Single source of truth: ValidateSlot (validate.go) is the only
     validity rule; is_complete, stats, and gating all derive from it.
  3. Type safety: Strong typing for IDs; location type is a tagged enum,
     never encoded inside an ID string.

USAGE:
  week := engine.NewWeeklyPattern()
  res := engine.ValidateSlot(engine.Monday, week.Day(engine.Monday), loc)
  slots := engine.Apply(week, quarter, nil, engine.Overwrite, locations)

SEE ALSO:
  - validate.go: Per-day slot validation
  - pattern.go: Weekly pattern editing and statistics
  - apply.go / extract.go: Pattern <-> quarter expansion and inference
  - completion.go / lifecycle.go: Quarter progress and status machine
*/
package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// WEEKDAY - Explicit enum, Monday first
// =============================================================================

// Weekday is the key into a WeeklyPattern. Monday-first, matching how
// athletes read a filing week. Conversion from calendar dates goes through
// Date.Weekday (date.go), never through raw time.Now().
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists all seven days in pattern order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
var weekdayKeys = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Key returns the lowercase persistence key ("monday").
// Stored shapes use these keys so a reimplementation stays
// round-trip-compatible with existing data.
func (d Weekday) Key() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("weekday-%d", int(d))
	}
	return weekdayKeys[d]
}

// ParseWeekday accepts both the display name and the persistence key.
func ParseWeekday(s string) (Weekday, error) {
	for i, k := range weekdayKeys {
		if s == k || s == weekdayNames[i] {
			return Weekday(i), nil
		}
	}
	return Monday, fmt.Errorf("unknown weekday %q", s)
}

// IsWeekend reports whether the day is Saturday or Sunday.
func (d Weekday) IsWeekend() bool { return d == Saturday || d == Sunday }

// =============================================================================
// LOCATION TYPE - Tagged enum, never string-parsed out of an ID
// =============================================================================

type LocationType string

const (
	LocationHome        LocationType = "home"
	LocationTraining    LocationType = "training"
	LocationGym         LocationType = "gym"
	LocationCompetition LocationType = "competition"
	LocationWork        LocationType = "work"
	LocationSchool      LocationType = "school"
	LocationHotel       LocationType = "hotel"
	LocationOther       LocationType = "other"
)

// SlotLocationTypes are the location types a weekly pattern may reference.
// Only these three carry per-weekday open hours managed by the athlete.
var SlotLocationTypes = []LocationType{LocationHome, LocationTraining, LocationGym}

var locationLabels = map[LocationType]string{
	LocationHome:        "Home",
	LocationTraining:    "Training",
	LocationGym:         "Gym",
	LocationCompetition: "Competition",
	LocationWork:        "Work",
	LocationSchool:      "School",
	LocationHotel:       "Hotel",
	LocationOther:       "Other",
}

// Label returns the human-readable name used in validation messages.
func (lt LocationType) Label() string {
	if l, ok := locationLabels[lt]; ok {
		return l
	}
	return string(lt)
}

// Valid reports whether lt is one of the recognized location types.
func (lt LocationType) Valid() bool {
	_, ok := locationLabels[lt]
	return ok
}

// =============================================================================
// TIME OF DAY - Minutes since midnight
// =============================================================================

// TimeOfDay is a wall-clock time as minutes since midnight, 0..1440.
// 1440 ("24:00") is a legal slot end bound.
type TimeOfDay int

// ParseTimeOfDay parses "HH:mm". "24:00" is accepted; "24:01" is not.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[3:])
	if err1 != nil || err2 != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Minutes() int { return int(t) }

func timeOfDayPtr(t TimeOfDay) *TimeOfDay { return &t }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AthleteID string
type QuarterID string
type LocationID string
type TemplateID string

// =============================================================================
// DAY SLOT PATTERN - Recurring intent for one weekday
// =============================================================================

// DaySlotPattern is the recurring declaration for one weekday: which
// location type and which 60-minute window. Times are kept as the raw
// "HH:mm" strings the athlete typed; parsing and the 60-minute invariant
// live in ValidateSlot. Both times empty is the unset state.
type DaySlotPattern struct {
	LocationType LocationType `json:"location_type"`
	TimeStart    string       `json:"time_start"`
	TimeEnd      string       `json:"time_end"`
}

// IsSet reports whether both times are non-empty.
func (p DaySlotPattern) IsSet() bool {
	return p.TimeStart != "" && p.TimeEnd != ""
}

// DefaultDayPattern is the day every new pattern starts from.
func DefaultDayPattern() DaySlotPattern {
	return DaySlotPattern{LocationType: LocationHome, TimeStart: "06:00", TimeEnd: "07:00"}
}

// =============================================================================
// WEEKLY PATTERN - Exactly 7 entries, Monday through Sunday
// =============================================================================

// WeeklyPattern maps every weekday to its recurring slot declaration.
// It is never partially populated: NewWeeklyPattern fills all seven days
// and Day panics on a missing key (a partial map is a programming error).
type WeeklyPattern map[Weekday]DaySlotPattern

// NewWeeklyPattern returns a pattern with every day set to the default.
func NewWeeklyPattern() WeeklyPattern {
	wp := make(WeeklyPattern, 7)
	for _, d := range Weekdays {
		wp[d] = DefaultDayPattern()
	}
	return wp
}

// Day returns the pattern for one weekday.
// Panics if the day is missing; a WeeklyPattern always has 7 entries.
func (wp WeeklyPattern) Day(d Weekday) DaySlotPattern {
	p, ok := wp[d]
	if !ok {
		panic(fmt.Sprintf("weekly pattern missing %s", d))
	}
	return p
}

// Clone returns a deep copy.
func (wp WeeklyPattern) Clone() WeeklyPattern {
	out := make(WeeklyPattern, len(wp))
	for d, p := range wp {
		out[d] = p
	}
	return out
}

// MarshalJSON encodes the pattern keyed by lowercase weekday, in Monday
// through Sunday order, matching the persisted shape.
func (wp WeeklyPattern) MarshalJSON() ([]byte, error) {
	out := make(map[string]DaySlotPattern, 7)
	for _, d := range Weekdays {
		out[d.Key()] = wp.Day(d)
	}
	return json.Marshal(out)
}

func (wp *WeeklyPattern) UnmarshalJSON(data []byte) error {
	var raw map[string]DaySlotPattern
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewWeeklyPattern()
	for k, p := range raw {
		d, err := ParseWeekday(k)
		if err != nil {
			return err
		}
		out[d] = p
	}
	*wp = out
	return nil
}

// =============================================================================
// LOCATION - Registered place with weekly open hours
// =============================================================================

// DayHours is one weekday's open window. Nil Open/Close means the
// location is closed that day.
type DayHours struct {
	Open  *TimeOfDay `json:"start"`
	Close *TimeOfDay `json:"end"`
}

// IsOpen reports whether the location is open at all that day.
func (h DayHours) IsOpen() bool { return h.Open != nil && h.Close != nil }

// WeeklyHours maps every weekday to its open window.
type WeeklyHours map[Weekday]DayHours

// OpenDaily returns hours with the same open window every day.
func OpenDaily(open, close TimeOfDay) WeeklyHours {
	wh := make(WeeklyHours, 7)
	for _, d := range Weekdays {
		wh[d] = DayHours{Open: timeOfDayPtr(open), Close: timeOfDayPtr(close)}
	}
	return wh
}

// Closed marks the given days as closed and returns the receiver,
// so hours can be built fluently: OpenDaily(...).Closed(Sunday).
func (wh WeeklyHours) Closed(days ...Weekday) WeeklyHours {
	for _, d := range days {
		wh[d] = DayHours{}
	}
	return wh
}

func (wh WeeklyHours) MarshalJSON() ([]byte, error) {
	type rawHours struct {
		Start *string `json:"start"`
		End   *string `json:"end"`
	}
	out := make(map[string]rawHours, 7)
	for _, d := range Weekdays {
		h := wh[d]
		var r rawHours
		if h.Open != nil {
			s := h.Open.String()
			r.Start = &s
		}
		if h.Close != nil {
			s := h.Close.String()
			r.End = &s
		}
		out[d.Key()] = r
	}
	return json.Marshal(out)
}

func (wh *WeeklyHours) UnmarshalJSON(data []byte) error {
	type rawHours struct {
		Start *string `json:"start"`
		End   *string `json:"end"`
	}
	var raw map[string]rawHours
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WeeklyHours, 7)
	for k, r := range raw {
		d, err := ParseWeekday(k)
		if err != nil {
			return err
		}
		var h DayHours
		if r.Start != nil {
			t, err := ParseTimeOfDay(*r.Start)
			if err != nil {
				return err
			}
			h.Open = &t
		}
		if r.End != nil {
			t, err := ParseTimeOfDay(*r.End)
			if err != nil {
				return err
			}
			h.Close = &t
		}
		out[d] = h
	}
	*wh = out
	return nil
}

// Location is a pre-registered place the athlete can declare slots at.
// Owned by the athlete; the engine only ever reads it.
type Location struct {
	ID      LocationID
	Type    LocationType
	Name    string
	Address string
	Hours   WeeklyHours
}

// HoursOn returns the open window for a weekday (closed if absent).
func (l *Location) HoursOn(d Weekday) DayHours {
	if l.Hours == nil {
		return DayHours{}
	}
	return l.Hours[d]
}

// =============================================================================
// DAILY SLOT - Persisted record for one concrete date
// =============================================================================

// SlotWindow is the declared 60-minute window for one date, denormalized
// with the location details so a filed quarter is self-contained.
type SlotWindow struct {
	StartTime       string       `json:"start_time"`
	EndTime         string       `json:"end_time"`
	LocationType    LocationType `json:"location_type"`
	LocationID      LocationID   `json:"location_id"`
	LocationName    string       `json:"location_name"`
	LocationAddress string       `json:"location_address"`
}

// IsSet reports whether both times are present.
func (s SlotWindow) IsSet() bool { return s.StartTime != "" && s.EndTime != "" }

// DailySlot is the persisted whereabouts record for one calendar date
// inside a quarter. One DailySlot per (quarter, date), keyed by date.
type DailySlot struct {
	QuarterID           QuarterID  `json:"quarter_id"`
	Date                Date       `json:"date"`
	Slot                SlotWindow `json:"slot_60min"`
	OvernightLocationID LocationID `json:"overnight_location_id,omitempty"`
	IsComplete          bool       `json:"is_complete"`
}

// PatternDay returns the slot as a recurring-day declaration, the shape
// the validator and extractor work on.
func (s DailySlot) PatternDay() DaySlotPattern {
	return DaySlotPattern{
		LocationType: s.Slot.LocationType,
		TimeStart:    s.Slot.StartTime,
		TimeEnd:      s.Slot.EndTime,
	}
}

// =============================================================================
// QUARTER - One filing period
// =============================================================================

// QuarterName identifies which calendar quarter of a year.
type QuarterName string

const (
	Q1 QuarterName = "Q1"
	Q2 QuarterName = "Q2"
	Q3 QuarterName = "Q3"
	Q4 QuarterName = "Q4"
)

// ParseQuarterName validates a quarter name.
func ParseQuarterName(s string) (QuarterName, error) {
	switch QuarterName(s) {
	case Q1, Q2, Q3, Q4:
		return QuarterName(s), nil
	}
	return "", fmt.Errorf("unknown quarter %q", s)
}

// Quarter is one athlete's filing period. days_completed,
// completion_percentage and the draft/incomplete/complete statuses are
// derived facts, recomputed on every slot mutation (see Reconcile).
type Quarter struct {
	ID                   QuarterID
	AthleteID            AthleteID
	Year                 int
	Quarter              QuarterName
	StartDate            Date
	EndDate              Date
	Status               Status
	DaysCompleted        int
	TotalDays            int
	CompletionPercentage int
	FilingDeadline       Date
	SubmittedAt          *time.Time
}

// Dates enumerates every date from StartDate to EndDate inclusive.
func (q Quarter) Dates() []Date {
	var dates []Date
	for d := q.StartDate; !d.After(q.EndDate); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether the date falls inside the quarter.
func (q Quarter) Contains(d Date) bool {
	return !d.Before(q.StartDate) && !d.After(q.EndDate)
}

// =============================================================================
// TEMPLATE - Named, reusable weekly pattern
// =============================================================================

// Template is a saved WeeklyPattern with usage accounting. At most one
// template per athlete has IsDefault set.
type Template struct {
	ID          TemplateID
	AthleteID   AthleteID
	Name        string
	Description string
	Pattern     WeeklyPattern
	UsageCount  int
	IsDefault   bool
	CreatedAt   time.Time
}

// =============================================================================
// ATHLETE - The filing entity
// =============================================================================

// Athlete is the person filing whereabouts. The engine only needs its
// identity; profile management belongs to the collaborators.
type Athlete struct {
	ID        AthleteID
	Name      string
	Email     string
	Sport     string
	CreatedAt time.Time
}
