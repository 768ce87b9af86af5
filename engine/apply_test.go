package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func q1_2025() engine.Quarter {
	return engine.NewQuarter("q-2025-1", "ath-1", 2025, engine.Q1)
}

func defaultWeek() engine.WeeklyPattern {
	return engine.NewWeeklyPattern()
}

// =============================================================================
// OVERWRITE MODE
// =============================================================================

func TestApply_Overwrite_FillsEveryDate(t *testing.T) {
	// GIVEN: Quarter Jan 1 - Mar 31 (90 days), default pattern, no slots
	// WHEN: Applying in Overwrite mode
	// THEN: 90 complete slots, one per date

	quarter := q1_2025()
	require.Equal(t, 90, quarter.TotalDays)

	slots := engine.Apply(defaultWeek(), quarter, nil, engine.Overwrite, testLocations())

	require.Len(t, slots, 90)
	for date, slot := range slots {
		assert.True(t, slot.IsComplete, "%s", date)
		assert.Equal(t, quarter.ID, slot.QuarterID)
		assert.Equal(t, date, slot.Date)
		assert.Equal(t, "06:00", slot.Slot.StartTime)
		assert.Equal(t, engine.LocationID("loc-home"), slot.Slot.LocationID)
		assert.Equal(t, "Apartment", slot.Slot.LocationName)
	}

	c := engine.ComputeCompletion(quarter, slots)
	assert.Equal(t, 90, c.DaysCompleted)
	assert.Equal(t, 100, c.CompletionPercentage)
	assert.Empty(t, c.MissingDates)
}

func TestApply_Overwrite_Idempotent(t *testing.T) {
	quarter := q1_2025()
	week := defaultWeek()
	week[engine.Wednesday] = day(engine.LocationTraining, "09:00", "10:00")
	locs := testLocations()

	once := engine.Apply(week, quarter, nil, engine.Overwrite, locs)
	twice := engine.Apply(week, quarter, once, engine.Overwrite, locs)

	assert.Equal(t, once, twice)
}

func TestApply_Overwrite_ReplacesExisting(t *testing.T) {
	quarter := q1_2025()
	locs := testLocations()

	first := engine.Apply(defaultWeek(), quarter, nil, engine.Overwrite, locs)

	week := defaultWeek()
	for _, d := range engine.Weekdays {
		week[d] = day(engine.LocationGym, "18:00", "19:00")
	}
	second := engine.Apply(week, quarter, first, engine.Overwrite, locs)

	require.Len(t, second, 90)
	for date, slot := range second {
		assert.Equal(t, engine.LocationGym, slot.Slot.LocationType, "%s", date)
	}
}

// =============================================================================
// FILL-ONLY MODE
// =============================================================================

func TestApply_FillOnly_PreservesExistingDates(t *testing.T) {
	// GIVEN: 5 of 90 dates pre-populated and complete
	// WHEN: Applying in FillOnly mode
	// THEN: 90 slots total, the original 5 unchanged

	quarter := q1_2025()
	locs := testLocations()

	existing := make(map[engine.Date]engine.DailySlot)
	for i := 0; i < 5; i++ {
		date := quarter.StartDate.AddDays(i * 7)
		existing[date] = engine.SlotFromPattern(quarter.ID, date,
			day(engine.LocationGym, "20:00", "21:00"), locs)
	}

	result := engine.Apply(defaultWeek(), quarter, existing, engine.FillOnly, locs)

	require.Len(t, result, 90)
	for date, orig := range existing {
		assert.Equal(t, orig, result[date], "pre-populated %s must be untouched", date)
	}
}

func TestApply_FillOnly_Monotone(t *testing.T) {
	// FillOnly never removes or mutates an existing date key, even when
	// the existing record is incomplete garbage.

	quarter := q1_2025()
	locs := testLocations()

	broken := engine.DailySlot{
		QuarterID: quarter.ID,
		Date:      quarter.StartDate,
		Slot:      engine.SlotWindow{StartTime: "03:00", EndTime: "03:30", LocationType: engine.LocationOther},
	}
	existing := map[engine.Date]engine.DailySlot{quarter.StartDate: broken}

	result := engine.Apply(defaultWeek(), quarter, existing, engine.FillOnly, locs)

	assert.Equal(t, broken, result[quarter.StartDate])
	assert.Len(t, result, 90)
	// input map untouched
	assert.Len(t, existing, 1)
}

// =============================================================================
// INVALID PATTERN DAYS STILL PRODUCE SLOTS
// =============================================================================

func TestApply_InvalidPatternDay_ProducesIncompleteSlot(t *testing.T) {
	// GIVEN: Sunday's pattern uses the training center, which is closed Sundays
	// WHEN: Applying to the quarter
	// THEN: Sundays get a concrete, correctable slot with is_complete=false

	quarter := q1_2025()
	week := defaultWeek()
	week[engine.Sunday] = day(engine.LocationTraining, "09:00", "10:00")

	slots := engine.Apply(week, quarter, nil, engine.Overwrite, testLocations())

	sundays := 0
	for date, slot := range slots {
		if date.Weekday() == engine.Sunday {
			sundays++
			assert.False(t, slot.IsComplete, "%s", date)
			assert.Equal(t, "09:00", slot.Slot.StartTime)
		} else {
			assert.True(t, slot.IsComplete, "%s", date)
		}
	}
	assert.Equal(t, 13, sundays, "Q1 2025 has 13 Sundays")

	c := engine.ComputeCompletion(quarter, slots)
	assert.Equal(t, 90-13, c.DaysCompleted)
	assert.Len(t, c.MissingDates, 13)
}
