/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates an athlete, their
	locations, and quarters in specific filing states.

AVAILABLE SCENARIOS:

	new-athlete:     Registered athlete with locations, fresh empty quarter
	pattern-week:    Quarter fully filed by applying a weekly pattern
	deadline-rush:   Partially filed quarter with missing dates to chase
	season-archive:  Submitted past quarter alongside the current one

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Register athlete and locations
 3. Create quarters and file slots as the scenario requires

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "pattern-week"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers and error mapping
  - filing/service.go: The operations the loaders drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "new-athlete",
		Name:        "New Athlete",
		Description: "Registered athlete with home, training and gym locations and an empty quarter",
	},
	{
		ID:          "pattern-week",
		Name:        "Pattern Week",
		Description: "Quarter fully filed by applying a valid weekly pattern in overwrite mode",
	},
	{
		ID:          "deadline-rush",
		Name:        "Deadline Rush",
		Description: "Weekdays filed, weekends missing, completion short of 100%",
	},
	{
		ID:          "season-archive",
		Name:        "Season Archive",
		Description: "A submitted past quarter next to the current quarter in progress",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "new-athlete":
		_, _, err = h.loadNewAthleteScenario(ctx)
	case "pattern-week":
		err = h.loadPatternWeekScenario(ctx)
	case "deadline-rush":
		err = h.loadDeadlineRushScenario(ctx)
	case "season-archive":
		err = h.loadSeasonArchiveScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.log.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadNewAthleteScenario registers one athlete with three locations and
// opens the current quarter with nothing filed yet.
func (h *Handler) loadNewAthleteScenario(ctx context.Context) (engine.AthleteID, engine.QuarterID, error) {
	athlete, err := h.Filing.RegisterAthlete(ctx, engine.Athlete{
		Name:  "Mara Voss",
		Email: "mara.voss@example.org",
		Sport: "Track & Field",
	})
	if err != nil {
		return "", "", err
	}

	locations := []engine.Location{
		{Type: engine.LocationHome, Name: "Home", Address: "12 Elm Street",
			Hours: engine.OpenDaily(mustTime("05:00"), mustTime("24:00"))},
		{Type: engine.LocationTraining, Name: "National Training Center", Address: "1 Stadium Way",
			Hours: engine.OpenDaily(mustTime("08:00"), mustTime("20:00")).Closed(engine.Sunday)},
		{Type: engine.LocationGym, Name: "Iron Works", Address: "44 Mill Rd",
			Hours: engine.OpenDaily(mustTime("06:00"), mustTime("22:00"))},
	}
	for _, loc := range locations {
		if _, err := h.Filing.UpsertLocation(ctx, athlete.ID, loc); err != nil {
			return "", "", err
		}
	}

	now := time.Now()
	name := currentQuarterName(now)
	quarter, err := h.Filing.CreateQuarter(ctx, athlete.ID, now.Year(), name)
	if err != nil {
		return "", "", err
	}
	return athlete.ID, quarter.ID, nil
}

// loadPatternWeekScenario fills every day of the quarter by applying a
// weekly pattern in overwrite mode.
func (h *Handler) loadPatternWeekScenario(ctx context.Context) error {
	_, quarterID, err := h.loadNewAthleteScenario(ctx)
	if err != nil {
		return err
	}

	_, _, err = h.Filing.ApplyPattern(ctx, quarterID, demoWeek(), engine.Overwrite)
	return err
}

// loadDeadlineRushScenario files weekdays only, leaving weekends missing
// so the completion view has something to chase.
func (h *Handler) loadDeadlineRushScenario(ctx context.Context) error {
	_, quarterID, err := h.loadNewAthleteScenario(ctx)
	if err != nil {
		return err
	}

	week := demoWeek()
	week[engine.Saturday] = engine.DaySlotPattern{}
	week[engine.Sunday] = engine.DaySlotPattern{}
	_, _, err = h.Filing.ApplyPattern(ctx, quarterID, week, engine.Overwrite)
	return err
}

// loadSeasonArchiveScenario adds a submitted previous quarter next to
// the current one. The past quarter is seeded directly through the
// store: its end date has passed, so the filing service would rightly
// refuse to edit it.
func (h *Handler) loadSeasonArchiveScenario(ctx context.Context) error {
	athleteID, _, err := h.loadNewAthleteScenario(ctx)
	if err != nil {
		return err
	}
	locations, err := h.Store.LoadLocations(ctx, athleteID)
	if err != nil {
		return err
	}

	prevYear, prevName := previousQuarter(time.Now())
	prev := engine.NewQuarter(engine.QuarterID(uuid.NewString()), athleteID, prevYear, prevName)
	slots := engine.Apply(demoWeek(), prev, nil, engine.Overwrite, locations)

	completion := engine.ComputeCompletion(prev, slots)
	submittedAt := time.Date(prev.EndDate.Year, prev.EndDate.Month, prev.EndDate.Day, 18, 0, 0, 0, time.UTC)
	prev, err = engine.SubmitQuarter(prev, completion, submittedAt)
	if err != nil {
		return err
	}

	if err := h.Store.SaveQuarter(ctx, prev); err != nil {
		return err
	}
	return h.Store.SaveSlots(ctx, prev.ID, slots)
}

// =============================================================================
// SCENARIO HELPERS
// =============================================================================

// demoWeek is a fully valid week: training on weekdays, gym Saturday,
// home Sunday.
func demoWeek() engine.WeeklyPattern {
	week := engine.NewWeeklyPattern()
	for _, d := range []engine.Weekday{engine.Monday, engine.Tuesday, engine.Wednesday, engine.Thursday, engine.Friday} {
		week[d] = engine.DaySlotPattern{LocationType: engine.LocationTraining, TimeStart: "09:00", TimeEnd: "10:00"}
	}
	week[engine.Saturday] = engine.DaySlotPattern{LocationType: engine.LocationGym, TimeStart: "10:00", TimeEnd: "11:00"}
	week[engine.Sunday] = engine.DaySlotPattern{LocationType: engine.LocationHome, TimeStart: "06:00", TimeEnd: "07:00"}
	return week
}

func currentQuarterName(t time.Time) engine.QuarterName {
	switch {
	case t.Month() <= time.March:
		return engine.Q1
	case t.Month() <= time.June:
		return engine.Q2
	case t.Month() <= time.September:
		return engine.Q3
	default:
		return engine.Q4
	}
}

func previousQuarter(t time.Time) (int, engine.QuarterName) {
	switch currentQuarterName(t) {
	case engine.Q1:
		return t.Year() - 1, engine.Q4
	case engine.Q2:
		return t.Year(), engine.Q1
	case engine.Q3:
		return t.Year(), engine.Q2
	default:
		return t.Year(), engine.Q3
	}
}

func mustTime(s string) engine.TimeOfDay {
	t, err := engine.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
