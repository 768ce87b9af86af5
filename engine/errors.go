/*
errors.go - Centralized error types for the compliance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Slot validation failures are NOT errors: ValidateSlot returns a typed
  SlotResult so callers render inline feedback without error plumbing.
  The errors here are precondition and not-found failures raised by the
  filing operations built on the engine.

ERROR CATEGORIES:
  1. Not-found errors   - Referenced athlete/quarter/template is missing
  2. Precondition errors - Rejected before any mutation (submit, save)
  3. Data-integrity sentinels - Expected steady states (empty quarter)

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, engine.ErrQuarterSubmitted) {
        // surface "quarter already submitted" to the athlete
    }

SEE ALSO:
  - validate.go: SlotResult, the non-error validation outcome
  - lifecycle.go: Uses the submit/lock precondition errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAthleteNotFound is returned when a referenced athlete doesn't exist.
	ErrAthleteNotFound = errors.New("athlete not found")

	// ErrQuarterNotFound is returned when a referenced quarter doesn't exist.
	ErrQuarterNotFound = errors.New("quarter not found")

	// ErrTemplateNotFound is returned when a referenced template doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLocationNotFound is returned when a referenced location doesn't exist.
	ErrLocationNotFound = errors.New("location not found")

	// ErrQuarterExists is returned when creating a second quarter for the
	// same athlete and year+quarter pair.
	ErrQuarterExists = errors.New("quarter already exists for this period")

	// ErrQuarterSubmitted is returned when mutating a submitted quarter.
	ErrQuarterSubmitted = errors.New("quarter already submitted")

	// ErrQuarterLocked is returned when mutating a locked quarter.
	ErrQuarterLocked = errors.New("quarter is locked")

	// ErrQuarterNotComplete is returned when submitting before every day
	// of the quarter is complete.
	ErrQuarterNotComplete = errors.New("quarter is not complete")

	// ErrNoSlots is the explicit "no result" for pattern extraction over
	// a quarter with no saved days. An empty quarter is a steady state,
	// not a failure.
	ErrNoSlots = errors.New("quarter has no saved slots")

	// ErrDateOutOfRange is returned when editing a date outside the
	// quarter's start..end range.
	ErrDateOutOfRange = errors.New("date outside quarter range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPatternError rejects saving a pattern as a template while any
// day fails validation. Carries the per-day reasons for display.
type InvalidPatternError struct {
	InvalidDays int
	Reasons     map[Weekday]string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("pattern has %d invalid day(s)", e.InvalidDays)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAthleteNotFound) ||
		errors.Is(err, ErrQuarterNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrLocationNotFound)
}

// IsConflict returns true if the error indicates a state conflict the
// client can resolve (duplicate period, submitted/locked quarter).
func IsConflict(err error) bool {
	return errors.Is(err, ErrQuarterExists) ||
		errors.Is(err, ErrQuarterSubmitted) ||
		errors.Is(err, ErrQuarterLocked)
}

// IsClientError returns true if the error is due to invalid client input
// or a rejected precondition rather than an internal failure.
func IsClientError(err error) bool {
	var ip *InvalidPatternError
	return IsConflict(err) ||
		errors.Is(err, ErrQuarterNotComplete) ||
		errors.Is(err, ErrDateOutOfRange) ||
		errors.Is(err, ErrNoSlots) ||
		errors.As(err, &ip)
}
