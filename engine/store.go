/*
store.go - Persistence interfaces for the filing collaborators

PURPOSE:
  Defines the boundary between the pure engine and whatever persists
  athletes, locations, quarters, slots and templates. The engine itself
  performs no I/O; the filing service composes these interfaces with the
  engine's pure functions.

ATOMICITY CONTRACT:
  SaveSlots replaces a quarter's entire slot set in one atomic call.
  Applying a pattern across ~90 dates must be all-or-nothing from the
  caller's perspective; implementations use a single transaction.

CONCURRENCY:
  Two concurrent writers to the same quarter resolve by last-writer-wins.
  No optimistic locking, no merge.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - engine/store: In-memory for testing/dev

SEE ALSO:
  - filing/service.go: The coordinator built on these interfaces
*/
package engine

import "context"

// =============================================================================
// STORE INTERFACES
// =============================================================================

// AthleteStore persists athlete records.
type AthleteStore interface {
	SaveAthlete(ctx context.Context, a Athlete) error
	GetAthlete(ctx context.Context, id AthleteID) (*Athlete, error)
	ListAthletes(ctx context.Context) ([]Athlete, error)
}

// LocationStore persists the athlete's registered locations, keyed by
// location type (at most one location per type per athlete).
type LocationStore interface {
	SaveLocation(ctx context.Context, athleteID AthleteID, loc Location) error
	LoadLocations(ctx context.Context, athleteID AthleteID) (map[LocationType]*Location, error)
}

// QuarterStore persists quarter records. SaveQuarter upserts; the
// (athlete, year, quarter) pair is unique.
type QuarterStore interface {
	SaveQuarter(ctx context.Context, q Quarter) error
	GetQuarter(ctx context.Context, id QuarterID) (*Quarter, error)
	FindQuarter(ctx context.Context, athleteID AthleteID, year int, name QuarterName) (*Quarter, error)
	ListQuarters(ctx context.Context, athleteID AthleteID) ([]Quarter, error)
}

// SlotStore persists a quarter's daily slots keyed by date.
type SlotStore interface {
	LoadSlots(ctx context.Context, quarterID QuarterID) (map[Date]DailySlot, error)

	// SaveSlots atomically replaces the quarter's slot set with the
	// given map. Either every slot is persisted or none are.
	SaveSlots(ctx context.Context, quarterID QuarterID, slots map[Date]DailySlot) error
}

// TemplateStore persists named reusable patterns with usage accounting.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, t Template) error
	GetTemplate(ctx context.Context, id TemplateID) (*Template, error)
	ListTemplates(ctx context.Context, athleteID AthleteID) ([]Template, error)

	// IncrementTemplateUsage bumps usage_count by one.
	IncrementTemplateUsage(ctx context.Context, id TemplateID) error

	// SetDefaultTemplate marks the template as the athlete's default,
	// atomically clearing any previous default.
	SetDefaultTemplate(ctx context.Context, athleteID AthleteID, id TemplateID) error
}

// Store is the full persistence surface the filing service needs.
type Store interface {
	AthleteStore
	LocationStore
	QuarterStore
	SlotStore
	TemplateStore

	// Reset clears all stored data. Dev and demo use only.
	Reset(ctx context.Context) error
}
