package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// DEFAULT STATE
// =============================================================================

func TestPatternEngine_StartsWithDefaultWeek(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())

	for _, d := range engine.Weekdays {
		p := e.Day(d)
		assert.Equal(t, engine.LocationHome, p.LocationType, "%s", d)
		assert.Equal(t, "06:00", p.TimeStart, "%s", d)
		assert.Equal(t, "07:00", p.TimeEnd, "%s", d)
	}
}

func TestPatternEngine_WeekReturnsCopy(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())

	week := e.Week()
	week[engine.Monday] = day(engine.LocationGym, "10:00", "11:00")

	assert.Equal(t, engine.LocationHome, e.Day(engine.Monday).LocationType,
		"mutating the returned week must not affect the engine")
}

// =============================================================================
// COPY OPERATIONS
// =============================================================================

func TestPatternEngine_CopyDayTo(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	e.SetDay(engine.Monday, day(engine.LocationTraining, "09:00", "10:00"))

	e.CopyDayTo(engine.Monday, engine.Wednesday, engine.Friday)

	assert.Equal(t, e.Day(engine.Monday), e.Day(engine.Wednesday))
	assert.Equal(t, e.Day(engine.Monday), e.Day(engine.Friday))
	assert.Equal(t, "06:00", e.Day(engine.Tuesday).TimeStart, "untouched day keeps default")
}

func TestPatternEngine_CopyDayTo_SelfCopyIsNoOp(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	e.SetDay(engine.Monday, day(engine.LocationGym, "18:00", "19:00"))

	e.CopyDayTo(engine.Monday, engine.Monday)

	assert.Equal(t, "18:00", e.Day(engine.Monday).TimeStart)
}

func TestPatternEngine_CopyToWeekdaysAndWeekends(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	e.SetDay(engine.Monday, day(engine.LocationTraining, "09:00", "10:00"))
	e.SetDay(engine.Saturday, day(engine.LocationGym, "11:00", "12:00"))

	e.CopyToWeekdays()
	e.CopyToWeekends()

	for _, d := range []engine.Weekday{engine.Tuesday, engine.Wednesday, engine.Thursday, engine.Friday} {
		assert.Equal(t, engine.LocationTraining, e.Day(d).LocationType, "%s", d)
	}
	assert.Equal(t, engine.LocationGym, e.Day(engine.Sunday).LocationType)
}

func TestPatternEngine_CopyAllFromMonday(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	e.SetDay(engine.Monday, day(engine.LocationGym, "20:00", "21:00"))

	e.CopyAllFromMonday()

	for _, d := range engine.Weekdays {
		assert.Equal(t, e.Day(engine.Monday), e.Day(d), "%s", d)
	}
}

func TestPatternEngine_ClearAll(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	for _, d := range engine.Weekdays {
		e.SetDay(d, day(engine.LocationGym, "15:00", "16:00"))
	}

	e.ClearAll()

	assert.Equal(t, engine.NewWeeklyPattern(), e.Week())
}

// =============================================================================
// STATS
// =============================================================================

func TestPatternEngine_Stats(t *testing.T) {
	// GIVEN: 2 training days, 1 gym day, 3 default home days, 1 unset day,
	//        and Sunday's training day invalid (center closed Sundays)
	e := engine.NewPatternEngine(testLocations())
	e.SetDay(engine.Tuesday, day(engine.LocationTraining, "09:00", "10:00"))
	e.SetDay(engine.Sunday, day(engine.LocationTraining, "09:00", "10:00"))
	e.SetDay(engine.Saturday, day(engine.LocationGym, "11:00", "12:00"))
	e.SetDay(engine.Friday, day(engine.LocationHome, "", ""))

	stats := e.Stats()

	assert.Equal(t, 6, stats.CompletedDays, "Friday has no times")
	assert.Equal(t, 5, stats.ValidDays)
	assert.Equal(t, 2, stats.InvalidDays, "Friday unset, Sunday closed")
	assert.Equal(t, 4, stats.HomeCount)
	assert.Equal(t, 2, stats.TrainingCount)
	assert.Equal(t, 1, stats.GymCount)
	assert.False(t, e.FullyValid())
}

func TestPatternEngine_FullyValid_GatesOnAllSeven(t *testing.T) {
	e := engine.NewPatternEngine(testLocations())
	require.True(t, e.FullyValid(), "default week is valid against open home hours")

	e.SetDay(engine.Thursday, day(engine.LocationHome, "06:00", "06:30"))
	assert.False(t, e.FullyValid())
}

func TestComputeStats_CountsTypeRegardlessOfValidity(t *testing.T) {
	week := engine.NewWeeklyPattern()
	week[engine.Monday] = day(engine.LocationGym, "01:00", "02:00") // before 05:00, invalid

	stats := engine.ComputeStats(week, testLocations())

	assert.Equal(t, 1, stats.GymCount)
	assert.Equal(t, 6, stats.HomeCount)
	assert.Equal(t, 1, stats.InvalidDays)
}
