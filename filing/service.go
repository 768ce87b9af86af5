/*
Package filing coordinates the compliance engine with persistence.

PURPOSE:
  The engine package is pure: values in, values out. This package owns
  the read-modify-write cycles around it (creating quarters, editing
  single days, expanding patterns, submitting) and keeps the quarter's
  derived fields reconciled after every slot mutation.

WRITE DISCIPLINE:
  Every operation that touches slots persists the full result with one
  SaveSlots call (atomic per the store contract) and then saves the
  reconciled quarter. Applying a pattern across ~90 dates is therefore
  all-or-nothing from the athlete's perspective.

CONCURRENCY:
  Last-writer-wins at the store boundary. The service holds no state of
  its own beyond its dependencies.

SEE ALSO:
  - templates.go: Named pattern management and usage accounting
  - engine/store.go: The persistence contracts this package drives
*/
package filing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/whereabouts-engine/engine"
)

// Service coordinates filing operations for athletes.
type Service struct {
	store engine.Store
	clock engine.Clock
}

// NewService wires the service. A nil clock falls back to the system
// clock (athlete-local calendar dates).
func NewService(store engine.Store, clock engine.Clock) *Service {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &Service{store: store, clock: clock}
}

// =============================================================================
// ATHLETES AND LOCATIONS
// =============================================================================

// RegisterAthlete creates an athlete record. A blank ID gets a generated one.
func (s *Service) RegisterAthlete(ctx context.Context, a engine.Athlete) (engine.Athlete, error) {
	if a.ID == "" {
		a.ID = engine.AthleteID(uuid.NewString())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := s.store.SaveAthlete(ctx, a); err != nil {
		return engine.Athlete{}, err
	}
	return a, nil
}

// UpsertLocation registers or replaces one of the athlete's locations.
// Locations are keyed by type; a blank location ID gets a generated one.
func (s *Service) UpsertLocation(ctx context.Context, athleteID engine.AthleteID, loc engine.Location) (engine.Location, error) {
	athlete, err := s.store.GetAthlete(ctx, athleteID)
	if err != nil {
		return engine.Location{}, err
	}
	if athlete == nil {
		return engine.Location{}, engine.ErrAthleteNotFound
	}
	if loc.ID == "" {
		loc.ID = engine.LocationID(uuid.NewString())
	}
	if err := s.store.SaveLocation(ctx, athleteID, loc); err != nil {
		return engine.Location{}, err
	}
	return loc, nil
}

// Locations returns the athlete's registered locations keyed by type.
func (s *Service) Locations(ctx context.Context, athleteID engine.AthleteID) (map[engine.LocationType]*engine.Location, error) {
	return s.store.LoadLocations(ctx, athleteID)
}

// =============================================================================
// QUARTER LIFECYCLE
// =============================================================================

// CreateQuarter starts filing for a year+quarter pair. At most one
// quarter per athlete per pair; duplicates are rejected before any write.
func (s *Service) CreateQuarter(ctx context.Context, athleteID engine.AthleteID, year int, name engine.QuarterName) (engine.Quarter, error) {
	athlete, err := s.store.GetAthlete(ctx, athleteID)
	if err != nil {
		return engine.Quarter{}, err
	}
	if athlete == nil {
		return engine.Quarter{}, engine.ErrAthleteNotFound
	}

	existing, err := s.store.FindQuarter(ctx, athleteID, year, name)
	if err != nil {
		return engine.Quarter{}, err
	}
	if existing != nil {
		return engine.Quarter{}, engine.ErrQuarterExists
	}

	quarter := engine.NewQuarter(engine.QuarterID(uuid.NewString()), athleteID, year, name)
	quarter = engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), s.clock.Today())
	if err := s.store.SaveQuarter(ctx, quarter); err != nil {
		return engine.Quarter{}, err
	}
	return quarter, nil
}

// GetQuarter returns the quarter with freshly reconciled derived fields
// and its completion view. The reconciled state is persisted when it
// drifted (e.g. the quarter aged into locked since the last read).
func (s *Service) GetQuarter(ctx context.Context, id engine.QuarterID) (engine.Quarter, engine.Completion, error) {
	quarter, slots, err := s.loadQuarter(ctx, id)
	if err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}

	completion := engine.ComputeCompletion(quarter, slots)
	reconciled := engine.Reconcile(quarter, completion, s.clock.Today())
	if reconciled != quarter {
		if err := s.store.SaveQuarter(ctx, reconciled); err != nil {
			return engine.Quarter{}, engine.Completion{}, err
		}
	}
	return reconciled, completion, nil
}

// ListQuarters returns all of an athlete's quarters.
func (s *Service) ListQuarters(ctx context.Context, athleteID engine.AthleteID) ([]engine.Quarter, error) {
	return s.store.ListQuarters(ctx, athleteID)
}

// Slots returns the quarter's saved slots keyed by date.
func (s *Service) Slots(ctx context.Context, id engine.QuarterID) (map[engine.Date]engine.DailySlot, error) {
	quarter, err := s.store.GetQuarter(ctx, id)
	if err != nil {
		return nil, err
	}
	if quarter == nil {
		return nil, engine.ErrQuarterNotFound
	}
	return s.store.LoadSlots(ctx, id)
}

// Submit performs the explicit submission transition.
func (s *Service) Submit(ctx context.Context, id engine.QuarterID) (engine.Quarter, error) {
	quarter, slots, err := s.loadQuarter(ctx, id)
	if err != nil {
		return engine.Quarter{}, err
	}

	completion := engine.ComputeCompletion(quarter, slots)
	quarter = engine.Reconcile(quarter, completion, s.clock.Today())

	submitted, err := engine.SubmitQuarter(quarter, completion, time.Now())
	if err != nil {
		return engine.Quarter{}, err
	}
	if err := s.store.SaveQuarter(ctx, submitted); err != nil {
		return engine.Quarter{}, err
	}
	return submitted, nil
}

// LockExpired sweeps the athlete's quarters and locks those whose end
// date has passed. Returns the quarters that transitioned.
func (s *Service) LockExpired(ctx context.Context, athleteID engine.AthleteID) ([]engine.Quarter, error) {
	quarters, err := s.store.ListQuarters(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	var locked []engine.Quarter
	for _, q := range quarters {
		if q.Status.Sticky() || !today.After(q.EndDate) {
			continue
		}
		slots, err := s.store.LoadSlots(ctx, q.ID)
		if err != nil {
			return locked, err
		}
		q = engine.Reconcile(q, engine.ComputeCompletion(q, slots), today)
		if err := s.store.SaveQuarter(ctx, q); err != nil {
			return locked, err
		}
		locked = append(locked, q)
	}
	return locked, nil
}

// =============================================================================
// SLOT MUTATIONS
// =============================================================================

// DayEdit is a manual single-day declaration.
type DayEdit struct {
	LocationType        engine.LocationType
	TimeStart           string
	TimeEnd             string
	OvernightLocationID engine.LocationID
}

// UpsertDaySlot applies a manual edit to one date of the quarter. The
// slot is persisted even when invalid (the athlete corrects it later);
// validity only drives is_complete. Returns the stored slot and the
// validation outcome for inline feedback.
func (s *Service) UpsertDaySlot(ctx context.Context, id engine.QuarterID, date engine.Date, edit DayEdit) (engine.DailySlot, engine.SlotResult, error) {
	quarter, slots, err := s.loadQuarter(ctx, id)
	if err != nil {
		return engine.DailySlot{}, engine.SlotResult{}, err
	}
	if err := s.ensureEditable(quarter); err != nil {
		return engine.DailySlot{}, engine.SlotResult{}, err
	}
	if !quarter.Contains(date) {
		return engine.DailySlot{}, engine.SlotResult{}, engine.ErrDateOutOfRange
	}

	locations, err := s.store.LoadLocations(ctx, quarter.AthleteID)
	if err != nil {
		return engine.DailySlot{}, engine.SlotResult{}, err
	}

	pattern := engine.DaySlotPattern{
		LocationType: edit.LocationType,
		TimeStart:    edit.TimeStart,
		TimeEnd:      edit.TimeEnd,
	}
	slot := engine.SlotFromPattern(quarter.ID, date, pattern, locations)
	slot.OvernightLocationID = edit.OvernightLocationID
	result := engine.ValidateSlotWith(date.Weekday(), pattern, locations)

	slots[date] = slot
	if err := s.persistSlots(ctx, quarter, slots); err != nil {
		return engine.DailySlot{}, engine.SlotResult{}, err
	}
	return slot, result, nil
}

// ApplyPattern expands a weekly pattern across the quarter in the given
// mode and persists the full result atomically.
func (s *Service) ApplyPattern(ctx context.Context, id engine.QuarterID, week engine.WeeklyPattern, mode engine.ApplyMode) (engine.Quarter, engine.Completion, error) {
	quarter, slots, err := s.loadQuarter(ctx, id)
	if err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}
	if err := s.ensureEditable(quarter); err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}

	locations, err := s.store.LoadLocations(ctx, quarter.AthleteID)
	if err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}

	applied := engine.Apply(week, quarter, slots, mode, locations)
	if err := s.persistSlots(ctx, quarter, applied); err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}

	completion := engine.ComputeCompletion(quarter, applied)
	return engine.Reconcile(quarter, completion, s.clock.Today()), completion, nil
}

// ExtractPattern reconstructs the recurring pattern behind the
// quarter's saved days. ErrNoSlots when nothing is filed yet.
func (s *Service) ExtractPattern(ctx context.Context, id engine.QuarterID) (engine.WeeklyPattern, error) {
	quarter, err := s.store.GetQuarter(ctx, id)
	if err != nil {
		return nil, err
	}
	if quarter == nil {
		return nil, engine.ErrQuarterNotFound
	}
	slots, err := s.store.LoadSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	return engine.Extract(slots)
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Service) loadQuarter(ctx context.Context, id engine.QuarterID) (engine.Quarter, map[engine.Date]engine.DailySlot, error) {
	quarter, err := s.store.GetQuarter(ctx, id)
	if err != nil {
		return engine.Quarter{}, nil, err
	}
	if quarter == nil {
		return engine.Quarter{}, nil, engine.ErrQuarterNotFound
	}
	slots, err := s.store.LoadSlots(ctx, id)
	if err != nil {
		return engine.Quarter{}, nil, err
	}
	return *quarter, slots, nil
}

func (s *Service) ensureEditable(q engine.Quarter) error {
	switch q.Status {
	case engine.StatusSubmitted:
		return engine.ErrQuarterSubmitted
	case engine.StatusLocked:
		return engine.ErrQuarterLocked
	}
	if s.clock.Today().After(q.EndDate) {
		return engine.ErrQuarterLocked
	}
	return nil
}

// persistSlots writes the slot set (one atomic call) and then the
// reconciled quarter.
func (s *Service) persistSlots(ctx context.Context, quarter engine.Quarter, slots map[engine.Date]engine.DailySlot) error {
	if err := s.store.SaveSlots(ctx, quarter.ID, slots); err != nil {
		return err
	}
	reconciled := engine.Reconcile(quarter, engine.ComputeCompletion(quarter, slots), s.clock.Today())
	return s.store.SaveQuarter(ctx, reconciled)
}
