/*
lifecycle.go - Quarter status state machine

PURPOSE:
  Governs the quarter's status field:

    draft      -> no days completed (initial)
    incomplete -> 0 < days_completed < total_days
    complete   -> days_completed == total_days, not yet submitted
    submitted  -> athlete explicitly submitted; terminal for edits
    locked     -> end_date has passed; terminal

  draft/incomplete/complete are DERIVED from completion and recomputed
  on every slot mutation. submitted and locked are STICKY: once set
  they are never overwritten by the derived states, and submitted_at is
  immutable once set.

TRANSITIONS:
  Reconcile    derives the current status (including the time-based lock)
  SubmitQuarter validates and performs the explicit submit transition
*/
package engine

import "time"

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusDraft      Status = "draft"
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
	StatusSubmitted  Status = "submitted"
	StatusLocked     Status = "locked"
)

// Sticky reports whether the status is terminal for derived updates.
func (s Status) Sticky() bool { return s == StatusSubmitted || s == StatusLocked }

// Editable reports whether athlete edits are still allowed.
func (s Status) Editable() bool { return !s.Sticky() }

// deriveStatus maps completion onto the three derived states.
func deriveStatus(c Completion) Status {
	switch {
	case c.IsComplete():
		return StatusComplete
	case c.DaysCompleted > 0:
		return StatusIncomplete
	default:
		return StatusDraft
	}
}

// =============================================================================
// RECONCILE - Re-derive the stored quarter fields
// =============================================================================

// Reconcile returns the quarter with its derived fields (days_completed,
// completion_percentage, status) recomputed from the completion view,
// and applies the time-based lock once today is past end_date. Sticky
// statuses are preserved; the lock wins over submitted-less states but a
// submitted quarter stays submitted.
func Reconcile(quarter Quarter, c Completion, today Date) Quarter {
	quarter.DaysCompleted = c.DaysCompleted
	quarter.CompletionPercentage = c.CompletionPercentage

	if quarter.Status == StatusSubmitted {
		return quarter
	}
	if quarter.Status == StatusLocked {
		return quarter
	}

	if today.After(quarter.EndDate) {
		quarter.Status = StatusLocked
		return quarter
	}

	quarter.Status = deriveStatus(c)
	return quarter
}

// =============================================================================
// SUBMIT - Explicit athlete transition
// =============================================================================

// SubmitQuarter performs the explicit submission. Allowed only when the
// derived state is complete and the quarter is not already submitted or
// locked. Sets submitted_at exactly once.
func SubmitQuarter(quarter Quarter, c Completion, now time.Time) (Quarter, error) {
	switch quarter.Status {
	case StatusSubmitted:
		return quarter, ErrQuarterSubmitted
	case StatusLocked:
		return quarter, ErrQuarterLocked
	}
	if !c.IsComplete() {
		return quarter, ErrQuarterNotComplete
	}

	quarter.Status = StatusSubmitted
	quarter.DaysCompleted = c.DaysCompleted
	quarter.CompletionPercentage = c.CompletionPercentage
	if quarter.SubmittedAt == nil {
		t := now
		quarter.SubmittedAt = &t
	}
	return quarter, nil
}
