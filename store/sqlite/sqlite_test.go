/*
sqlite_test.go - Tests for the SQLite store

Tests for:
- Round-trips of athletes, locations, quarters, slots and templates
- Atomic slot replacement (SaveSlots)
- Default-template exclusivity
*/
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/warp/whereabouts-engine/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustTime(t *testing.T, s string) engine.TimeOfDay {
	t.Helper()
	v, err := engine.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("Failed to parse time %q: %v", s, err)
	}
	return v
}

func TestAthlete_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: a saved athlete
	athlete := engine.Athlete{ID: "ath-1", Name: "Mara Voss", Email: "mara@example.com", Sport: "rowing"}
	if err := store.SaveAthlete(ctx, athlete); err != nil {
		t.Fatalf("Failed to save athlete: %v", err)
	}

	// WHEN: reading it back
	got, err := store.GetAthlete(ctx, "ath-1")
	if err != nil {
		t.Fatalf("Failed to get athlete: %v", err)
	}

	// THEN: fields round-trip and created_at was backfilled
	if got == nil {
		t.Fatal("Expected athlete, got nil")
	}
	if got.Name != "Mara Voss" || got.Email != "mara@example.com" || got.Sport != "rowing" {
		t.Errorf("Athlete fields did not round-trip: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	// Missing athletes read as nil, nil
	missing, err := store.GetAthlete(ctx, "nope")
	if err != nil {
		t.Fatalf("Unexpected error for missing athlete: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing athlete, got %+v", missing)
	}
}

func TestLocation_UpsertReplacesByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	open := mustTime(t, "08:00")
	close := mustTime(t, "20:00")
	hours := engine.OpenDaily(open, close).Closed(engine.Sunday)

	// GIVEN: a training location
	loc := engine.Location{ID: "loc-1", Type: engine.LocationTraining, Name: "Old Gym", Hours: hours}
	if err := store.SaveLocation(ctx, "ath-1", loc); err != nil {
		t.Fatalf("Failed to save location: %v", err)
	}

	// WHEN: saving another location of the same type
	loc.ID = "loc-2"
	loc.Name = "National Training Center"
	if err := store.SaveLocation(ctx, "ath-1", loc); err != nil {
		t.Fatalf("Failed to upsert location: %v", err)
	}

	// THEN: only the newest remains for that type, hours intact
	locations, err := store.LoadLocations(ctx, "ath-1")
	if err != nil {
		t.Fatalf("Failed to load locations: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("Expected 1 location, got %d", len(locations))
	}
	got := locations[engine.LocationTraining]
	if got.ID != "loc-2" || got.Name != "National Training Center" {
		t.Errorf("Upsert did not replace: %+v", got)
	}
	if got.Hours[engine.Sunday].Open != nil {
		t.Error("Sunday should round-trip as closed")
	}
	if got.Hours[engine.Monday].Open == nil || *got.Hours[engine.Monday].Open != open {
		t.Errorf("Monday open hours did not round-trip: %+v", got.Hours[engine.Monday])
	}
}

func TestQuarter_RoundTripAndUniquePeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: a saved quarter
	q := engine.NewQuarter("q-1", "ath-1", 2025, engine.Q1)
	if err := store.SaveQuarter(ctx, q); err != nil {
		t.Fatalf("Failed to save quarter: %v", err)
	}

	// THEN: it reads back by ID and by period
	got, err := store.GetQuarter(ctx, "q-1")
	if err != nil {
		t.Fatalf("Failed to get quarter: %v", err)
	}
	if got == nil || *got != q {
		t.Errorf("Quarter did not round-trip: got %+v want %+v", got, q)
	}

	found, err := store.FindQuarter(ctx, "ath-1", 2025, engine.Q1)
	if err != nil {
		t.Fatalf("Failed to find quarter: %v", err)
	}
	if found == nil || found.ID != "q-1" {
		t.Errorf("FindQuarter missed the period: %+v", found)
	}

	// AND: a second quarter for the same period is rejected by the index
	dup := engine.NewQuarter("q-dup", "ath-1", 2025, engine.Q1)
	if err := store.SaveQuarter(ctx, dup); err == nil {
		t.Error("Expected unique index violation for duplicate period")
	}
}

func TestQuarter_SubmittedAtSurvives(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q := engine.NewQuarter("q-1", "ath-1", 2024, engine.Q2)
	q.Status = engine.StatusSubmitted
	submitted := time.Date(2024, time.June, 29, 8, 0, 0, 0, time.UTC)
	q.SubmittedAt = &submitted
	if err := store.SaveQuarter(ctx, q); err != nil {
		t.Fatalf("Failed to save quarter: %v", err)
	}

	got, err := store.GetQuarter(ctx, "q-1")
	if err != nil {
		t.Fatalf("Failed to get quarter: %v", err)
	}
	if got.SubmittedAt == nil || !got.SubmittedAt.Equal(submitted) {
		t.Errorf("SubmittedAt did not round-trip: %v", got.SubmittedAt)
	}
	if got.Status != engine.StatusSubmitted {
		t.Errorf("Status did not round-trip: %v", got.Status)
	}
}

func TestSaveSlots_ReplacesAtomically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day1 := engine.NewDate(2025, time.January, 6)
	day2 := engine.NewDate(2025, time.January, 7)

	slot := func(d engine.Date, locName string) engine.DailySlot {
		return engine.DailySlot{
			QuarterID: "q-1",
			Date:      d,
			Slot: engine.SlotWindow{
				StartTime:    "09:00",
				EndTime:      "10:00",
				LocationType: engine.LocationTraining,
				LocationID:   "loc-1",
				LocationName: locName,
			},
			IsComplete: true,
		}
	}

	// GIVEN: two filed days
	first := map[engine.Date]engine.DailySlot{
		day1: slot(day1, "Center A"),
		day2: slot(day2, "Center A"),
	}
	if err := store.SaveSlots(ctx, "q-1", first); err != nil {
		t.Fatalf("Failed to save slots: %v", err)
	}

	// WHEN: saving a replacement set with only one day
	second := map[engine.Date]engine.DailySlot{
		day1: slot(day1, "Center B"),
	}
	if err := store.SaveSlots(ctx, "q-1", second); err != nil {
		t.Fatalf("Failed to replace slots: %v", err)
	}

	// THEN: the old set is fully gone
	loaded, err := store.LoadSlots(ctx, "q-1")
	if err != nil {
		t.Fatalf("Failed to load slots: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 slot after replacement, got %d", len(loaded))
	}
	if loaded[day1].Slot.LocationName != "Center B" {
		t.Errorf("Replacement slot not stored: %+v", loaded[day1])
	}
	if !loaded[day1].IsComplete {
		t.Error("is_complete did not round-trip")
	}
}

func TestTemplate_UsageAndDefault(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	week := engine.NewWeeklyPattern()
	week[engine.Monday] = engine.DaySlotPattern{
		LocationType: engine.LocationTraining, TimeStart: "09:00", TimeEnd: "10:00",
	}

	save := func(id engine.TemplateID, name string) {
		if err := store.SaveTemplate(ctx, engine.Template{
			ID: id, AthleteID: "ath-1", Name: name, Pattern: week,
		}); err != nil {
			t.Fatalf("Failed to save template %s: %v", id, err)
		}
	}
	save("tpl-1", "Standard week")
	save("tpl-2", "Race week")

	// Usage accounting
	if err := store.IncrementTemplateUsage(ctx, "tpl-1"); err != nil {
		t.Fatalf("Failed to increment usage: %v", err)
	}
	if err := store.IncrementTemplateUsage(ctx, "missing"); err != engine.ErrTemplateNotFound {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}

	// Default exclusivity: marking tpl-2 clears tpl-1
	if err := store.SetDefaultTemplate(ctx, "ath-1", "tpl-1"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if err := store.SetDefaultTemplate(ctx, "ath-1", "tpl-2"); err != nil {
		t.Fatalf("Failed to move default: %v", err)
	}

	templates, err := store.ListTemplates(ctx, "ath-1")
	if err != nil {
		t.Fatalf("Failed to list templates: %v", err)
	}
	defaults := 0
	for _, tmpl := range templates {
		if tmpl.IsDefault {
			defaults++
			if tmpl.ID != "tpl-2" {
				t.Errorf("Wrong default template: %s", tmpl.ID)
			}
		}
		if tmpl.ID == "tpl-1" && tmpl.UsageCount != 1 {
			t.Errorf("Expected usage 1 for tpl-1, got %d", tmpl.UsageCount)
		}
	}
	if defaults != 1 {
		t.Errorf("Expected exactly one default, got %d", defaults)
	}

	// Pattern JSON round-trips through the template row
	got, err := store.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("Failed to get template: %v", err)
	}
	if got.Pattern.Day(engine.Monday).TimeStart != "09:00" {
		t.Errorf("Pattern did not round-trip: %+v", got.Pattern.Day(engine.Monday))
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveAthlete(ctx, engine.Athlete{ID: "ath-1", Name: "Mara"}); err != nil {
		t.Fatalf("Failed to save athlete: %v", err)
	}
	if err := store.SaveQuarter(ctx, engine.NewQuarter("q-1", "ath-1", 2025, engine.Q1)); err != nil {
		t.Fatalf("Failed to save quarter: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	athletes, err := store.ListAthletes(ctx)
	if err != nil {
		t.Fatalf("Failed to list athletes: %v", err)
	}
	if len(athletes) != 0 {
		t.Errorf("Expected no athletes after reset, got %d", len(athletes))
	}
	q, err := store.GetQuarter(ctx, "q-1")
	if err != nil {
		t.Fatalf("Failed to get quarter: %v", err)
	}
	if q != nil {
		t.Errorf("Expected no quarter after reset, got %+v", q)
	}
}
