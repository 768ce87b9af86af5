package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestExtract_RoundTripsAppliedPattern(t *testing.T) {
	// GIVEN: A fully valid pattern applied across a full quarter
	// WHEN: Extracting from the resulting slots
	// THEN: The original pattern comes back exactly

	quarter := q1_2025()
	locs := testLocations()

	week := engine.NewWeeklyPattern()
	week[engine.Monday] = day(engine.LocationTraining, "09:00", "10:00")
	week[engine.Wednesday] = day(engine.LocationGym, "18:00", "19:00")
	week[engine.Saturday] = day(engine.LocationGym, "10:00", "11:00")

	slots := engine.Apply(week, quarter, nil, engine.Overwrite, locs)

	got, err := engine.Extract(slots)
	require.NoError(t, err)
	assert.Equal(t, week, got)
}

// =============================================================================
// MAJORITY VOTE
// =============================================================================

func TestExtract_MajorityWins(t *testing.T) {
	// GIVEN: 13 Mondays, 9 at training 09:00-10:00 and 4 manually moved
	// WHEN: Extracting
	// THEN: Monday reconstructs as the majority triple

	quarter := q1_2025()
	locs := testLocations()

	slots := engine.Apply(engine.NewWeeklyPattern(), quarter, nil, engine.Overwrite, locs)

	mondays := 0
	for _, date := range quarter.Dates() {
		if date.Weekday() != engine.Monday {
			continue
		}
		mondays++
		p := day(engine.LocationTraining, "09:00", "10:00")
		if mondays <= 4 {
			p = day(engine.LocationGym, "18:00", "19:00")
		}
		slots[date] = engine.SlotFromPattern(quarter.ID, date, p, locs)
	}
	require.Equal(t, 13, mondays)

	got, err := engine.Extract(slots)
	require.NoError(t, err)
	assert.Equal(t, day(engine.LocationTraining, "09:00", "10:00"), got.Day(engine.Monday))
}

func TestExtract_NoMajority_FallsBackToDefault(t *testing.T) {
	// GIVEN: Only two Mondays filed, disagreeing with each other
	// WHEN: Extracting
	// THEN: Monday falls back to the default day instead of failing

	quarter := q1_2025()
	locs := testLocations()

	first := quarter.StartDate.AddDays(5)  // Mon Jan 6
	second := quarter.StartDate.AddDays(12) // Mon Jan 13
	require.Equal(t, engine.Monday, first.Weekday())
	require.Equal(t, engine.Monday, second.Weekday())

	slots := map[engine.Date]engine.DailySlot{
		first:  engine.SlotFromPattern(quarter.ID, first, day(engine.LocationGym, "18:00", "19:00"), locs),
		second: engine.SlotFromPattern(quarter.ID, second, day(engine.LocationTraining, "09:00", "10:00"), locs),
	}

	got, err := engine.Extract(slots)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultDayPattern(), got.Day(engine.Monday))
	assert.Equal(t, engine.DefaultDayPattern(), got.Day(engine.Friday), "weekday with no slots defaults too")
}

func TestExtract_UnsetSlotsCarryNoVote(t *testing.T) {
	quarter := q1_2025()

	blank := engine.DailySlot{QuarterID: quarter.ID, Date: quarter.StartDate}
	slots := map[engine.Date]engine.DailySlot{quarter.StartDate: blank}

	got, err := engine.Extract(slots)
	require.NoError(t, err)
	assert.Equal(t, engine.NewWeeklyPattern(), got, "a lone unset slot reconstructs the default week")
}

// =============================================================================
// NO RESULT
// =============================================================================

func TestExtract_EmptyQuarter_ReturnsErrNoSlots(t *testing.T) {
	_, err := engine.Extract(nil)
	assert.True(t, errors.Is(err, engine.ErrNoSlots))

	_, err = engine.Extract(map[engine.Date]engine.DailySlot{})
	assert.True(t, errors.Is(err, engine.ErrNoSlots))
}
