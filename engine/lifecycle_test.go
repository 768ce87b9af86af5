package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// COMPLETION
// =============================================================================

func TestComputeCompletion_CountsAndMissingDates(t *testing.T) {
	// GIVEN: 90-day quarter with 2 complete days and 1 incomplete day filed
	quarter := q1_2025()
	locs := testLocations()

	d1 := quarter.StartDate
	d2 := quarter.StartDate.AddDays(1)
	d3 := quarter.StartDate.AddDays(2)
	slots := map[engine.Date]engine.DailySlot{
		d1: engine.SlotFromPattern(quarter.ID, d1, engine.DefaultDayPattern(), locs),
		d2: engine.SlotFromPattern(quarter.ID, d2, engine.DefaultDayPattern(), locs),
		d3: engine.SlotFromPattern(quarter.ID, d3, day(engine.LocationHome, "03:00", "04:00"), locs),
	}

	c := engine.ComputeCompletion(quarter, slots)

	assert.Equal(t, 2, c.DaysCompleted)
	assert.Equal(t, 90, c.TotalDays)
	assert.Equal(t, 2, c.CompletionPercentage, "round(100*2/90)")
	require.Len(t, c.MissingDates, 88)
	assert.Equal(t, d3, c.MissingDates[0], "incomplete filed day counts as missing")
	assert.Equal(t, quarter.EndDate, c.MissingDates[87])
	assert.False(t, c.IsComplete())
}

func TestComputeCompletion_MissingDatesAscending(t *testing.T) {
	quarter := q1_2025()
	c := engine.ComputeCompletion(quarter, nil)

	require.Len(t, c.MissingDates, 90)
	for i := 1; i < len(c.MissingDates); i++ {
		assert.True(t, c.MissingDates[i-1].Before(c.MissingDates[i]))
	}
}

func TestComputeCompletion_PercentageRounding(t *testing.T) {
	// 45/91 rounds down to 49, 46/91 rounds up to 51
	quarter := engine.NewQuarter("q", "ath-1", 2025, engine.Q2)
	require.Equal(t, 91, quarter.TotalDays)

	locs := testLocations()
	slots := make(map[engine.Date]engine.DailySlot)
	for i := 0; i < 45; i++ {
		date := quarter.StartDate.AddDays(i)
		slots[date] = engine.SlotFromPattern(quarter.ID, date, engine.DefaultDayPattern(), locs)
	}

	c := engine.ComputeCompletion(quarter, slots)
	assert.Equal(t, 49, c.CompletionPercentage, "round(100*45/91) = round(49.45)")

	next := quarter.StartDate.AddDays(45)
	slots[next] = engine.SlotFromPattern(quarter.ID, next, engine.DefaultDayPattern(), locs)
	c = engine.ComputeCompletion(quarter, slots)
	assert.Equal(t, 51, c.CompletionPercentage, "round(100*46/91) = round(50.55)")
}

func TestComputeCompletion_HundredPercentIffNoMissing(t *testing.T) {
	quarter := q1_2025()
	slots := engine.Apply(engine.NewWeeklyPattern(), quarter, nil, engine.Overwrite, testLocations())

	c := engine.ComputeCompletion(quarter, slots)
	assert.Equal(t, 100, c.CompletionPercentage)
	assert.Empty(t, c.MissingDates)

	// knock one day out
	broken := quarter.StartDate.AddDays(40)
	s := slots[broken]
	s.IsComplete = false
	slots[broken] = s

	c = engine.ComputeCompletion(quarter, slots)
	assert.NotEqual(t, 100, c.CompletionPercentage)
	assert.Equal(t, []engine.Date{broken}, c.MissingDates)
}

func TestComputeCompletion_ZeroTotalDays_YieldsZeroValue(t *testing.T) {
	// A malformed quarter is an expected steady state, not a panic.
	c := engine.ComputeCompletion(engine.Quarter{}, nil)
	assert.Equal(t, 0, c.DaysCompleted)
	assert.Equal(t, 0, c.CompletionPercentage)
	assert.Empty(t, c.MissingDates)
}

// =============================================================================
// STATUS DERIVATION
// =============================================================================

func TestReconcile_DerivedStates(t *testing.T) {
	quarter := q1_2025()
	today := quarter.StartDate // inside the quarter
	locs := testLocations()

	// draft: nothing filed
	q := engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), today)
	assert.Equal(t, engine.StatusDraft, q.Status)
	assert.Equal(t, 0, q.DaysCompleted)

	// incomplete: some days filed
	partial := map[engine.Date]engine.DailySlot{
		quarter.StartDate: engine.SlotFromPattern(quarter.ID, quarter.StartDate, engine.DefaultDayPattern(), locs),
	}
	q = engine.Reconcile(quarter, engine.ComputeCompletion(quarter, partial), today)
	assert.Equal(t, engine.StatusIncomplete, q.Status)
	assert.Equal(t, 1, q.DaysCompleted)

	// complete: every day filed
	full := engine.Apply(engine.NewWeeklyPattern(), quarter, nil, engine.Overwrite, locs)
	q = engine.Reconcile(quarter, engine.ComputeCompletion(quarter, full), today)
	assert.Equal(t, engine.StatusComplete, q.Status)
	assert.Equal(t, 100, q.CompletionPercentage)
}

func TestReconcile_LockWhenEndDatePassed(t *testing.T) {
	quarter := q1_2025()
	dayAfter := quarter.EndDate.AddDays(1)

	q := engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), dayAfter)
	assert.Equal(t, engine.StatusLocked, q.Status)

	// end date itself is not yet locked
	q = engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), quarter.EndDate)
	assert.Equal(t, engine.StatusDraft, q.Status)
}

func TestReconcile_StickyStatesSurvive(t *testing.T) {
	quarter := q1_2025()
	quarter.Status = engine.StatusSubmitted
	now := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
	quarter.SubmittedAt = &now

	// Derived recomputation must not demote a submitted quarter, even
	// past the end date.
	q := engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), quarter.EndDate.AddDays(10))
	assert.Equal(t, engine.StatusSubmitted, q.Status)
	assert.Equal(t, &now, q.SubmittedAt)

	quarter.Status = engine.StatusLocked
	q = engine.Reconcile(quarter, engine.ComputeCompletion(quarter, nil), quarter.StartDate)
	assert.Equal(t, engine.StatusLocked, q.Status, "locked never reopens")
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitQuarter_RequiresComplete(t *testing.T) {
	quarter := q1_2025()
	now := time.Date(2025, time.March, 30, 12, 0, 0, 0, time.UTC)

	_, err := engine.SubmitQuarter(quarter, engine.ComputeCompletion(quarter, nil), now)
	assert.True(t, errors.Is(err, engine.ErrQuarterNotComplete))
}

func TestSubmitQuarter_SetsImmutableSubmittedAt(t *testing.T) {
	quarter := q1_2025()
	full := engine.Apply(engine.NewWeeklyPattern(), quarter, nil, engine.Overwrite, testLocations())
	c := engine.ComputeCompletion(quarter, full)

	first := time.Date(2025, time.March, 30, 12, 0, 0, 0, time.UTC)
	q, err := engine.SubmitQuarter(quarter, c, first)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusSubmitted, q.Status)
	require.NotNil(t, q.SubmittedAt)
	assert.Equal(t, first, *q.SubmittedAt)

	// resubmission is rejected and the timestamp untouched
	_, err = engine.SubmitQuarter(q, c, first.Add(time.Hour))
	assert.True(t, errors.Is(err, engine.ErrQuarterSubmitted))
	assert.Equal(t, first, *q.SubmittedAt)
}

func TestSubmitQuarter_LockedIsTerminal(t *testing.T) {
	quarter := q1_2025()
	quarter.Status = engine.StatusLocked
	full := engine.Apply(engine.NewWeeklyPattern(), quarter, nil, engine.Overwrite, testLocations())

	_, err := engine.SubmitQuarter(quarter, engine.ComputeCompletion(quarter, full), time.Now())
	assert.True(t, errors.Is(err, engine.ErrQuarterLocked))
}

// =============================================================================
// QUARTER PERIODS
// =============================================================================

func TestNewQuarter_Periods(t *testing.T) {
	cases := []struct {
		name  engine.QuarterName
		start engine.Date
		end   engine.Date
		days  int
	}{
		{engine.Q1, engine.NewDate(2025, time.January, 1), engine.NewDate(2025, time.March, 31), 90},
		{engine.Q2, engine.NewDate(2025, time.April, 1), engine.NewDate(2025, time.June, 30), 91},
		{engine.Q3, engine.NewDate(2025, time.July, 1), engine.NewDate(2025, time.September, 30), 92},
		{engine.Q4, engine.NewDate(2025, time.October, 1), engine.NewDate(2025, time.December, 31), 92},
	}

	for _, tc := range cases {
		q := engine.NewQuarter("q", "ath-1", 2025, tc.name)
		assert.Equal(t, tc.start, q.StartDate, "%s", tc.name)
		assert.Equal(t, tc.end, q.EndDate, "%s", tc.name)
		assert.Equal(t, tc.days, q.TotalDays, "%s", tc.name)
		assert.Equal(t, engine.StatusDraft, q.Status)
		assert.Equal(t, tc.start.AddDays(-15), q.FilingDeadline)
		assert.Len(t, q.Dates(), tc.days)
	}
}

func TestNewQuarter_LeapYearQ1(t *testing.T) {
	q := engine.NewQuarter("q", "ath-1", 2024, engine.Q1)
	assert.Equal(t, 91, q.TotalDays)
}
