/*
handlers.go - HTTP API handlers for the whereabouts filing system

PURPOSE:
  Exposes the filing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Athletes:
    GET    /api/athletes                          List athletes
    POST   /api/athletes                          Register athlete
    GET    /api/athletes/{id}                     Athlete details
    GET    /api/athletes/{id}/locations           Registered locations
    PUT    /api/athletes/{id}/locations/{type}    Register/replace a location
    GET    /api/athletes/{id}/quarters            List quarters
    POST   /api/athletes/{id}/quarters            Start a quarter
    GET    /api/athletes/{id}/templates           List templates
    POST   /api/athletes/{id}/templates           Save template

  Quarters:
    GET    /api/quarters/{id}                     Quarter with completion
    GET    /api/quarters/{id}/slots               Filed daily slots
    PUT    /api/quarters/{id}/slots/{date}        Edit one day
    POST   /api/quarters/{id}/apply               Apply a pattern
    POST   /api/quarters/{id}/extract             Extract pattern from slots
    POST   /api/quarters/{id}/submit              Submit the quarter
    GET    /api/quarters/{id}/completion          Completion summary

  Patterns:
    POST   /api/patterns/validate                 Validate without applying

  Templates:
    POST   /api/templates/{id}/apply              Apply template to a quarter
    POST   /api/templates/{id}/default            Mark as default

  Scenarios:
    GET    /api/scenarios                         List demo scenarios
    POST   /api/scenarios/load                    Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Athlete/quarter/template not found
  - 409: Conflict (duplicate quarter, submitted/locked edits)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warp/whereabouts-engine/engine"
	"github.com/warp/whereabouts-engine/filing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  engine.Store
	Filing *filing.Service

	log      zerolog.Logger
	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler around the store and filing service.
func NewHandler(store engine.Store, svc *filing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Filing:   svc,
		log:      log,
		validate: validator.New(),
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return false
	}
	return true
}

// =============================================================================
// ATHLETE HANDLERS
// =============================================================================

// ListAthletes returns all registered athletes.
func (h *Handler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := h.Store.ListAthletes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list athletes", err)
		return
	}

	dtos := make([]AthleteDTO, len(athletes))
	for i, a := range athletes {
		dtos[i] = toAthleteDTO(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"athletes": dtos})
}

// CreateAthlete registers a new athlete.
func (h *Handler) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	var req CreateAthleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	athlete, err := h.Filing.RegisterAthlete(r.Context(), engine.Athlete{
		ID:    engine.AthleteID(req.ID),
		Name:  req.Name,
		Email: req.Email,
		Sport: req.Sport,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to register athlete", err)
		return
	}

	h.log.Info().Str("athlete_id", string(athlete.ID)).Msg("athlete registered")
	writeJSON(w, http.StatusCreated, toAthleteDTO(athlete))
}

// GetAthlete returns one athlete.
func (h *Handler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))
	athlete, err := h.Store.GetAthlete(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get athlete", err)
		return
	}
	if athlete == nil {
		writeError(w, http.StatusNotFound, "Athlete not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteDTO(*athlete))
}

// ListLocations returns the athlete's registered locations by type.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))
	locations, err := h.Filing.Locations(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to list locations", err)
		return
	}

	dtos := make([]LocationDTO, 0, len(locations))
	for _, loc := range locations {
		dtos = append(dtos, toLocationDTO(*loc))
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Type < dtos[j].Type })
	writeJSON(w, http.StatusOK, map[string]any{"locations": dtos})
}

// PutLocation registers or replaces the location for a type.
func (h *Handler) PutLocation(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))
	locType := engine.LocationType(chi.URLParam(r, "type"))
	if !locType.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown location type", nil)
		return
	}

	var req PutLocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	hours, err := toWeeklyHours(req.WeeklyHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid weekly hours", err)
		return
	}

	loc, err := h.Filing.UpsertLocation(r.Context(), id, engine.Location{
		Type:    locType,
		Name:    req.Name,
		Address: req.Address,
		Hours:   hours,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to save location", err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationDTO(loc))
}

// =============================================================================
// QUARTER HANDLERS
// =============================================================================

// ListQuarters returns the athlete's quarters, newest first.
func (h *Handler) ListQuarters(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))
	quarters, err := h.Filing.ListQuarters(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to list quarters", err)
		return
	}

	sort.Slice(quarters, func(i, j int) bool {
		if quarters[i].Year != quarters[j].Year {
			return quarters[i].Year > quarters[j].Year
		}
		return quarters[i].Quarter > quarters[j].Quarter
	})

	dtos := make([]QuarterDTO, len(quarters))
	for i, q := range quarters {
		dtos[i] = toQuarterDTO(q, nil)
	}
	writeJSON(w, http.StatusOK, map[string]any{"quarters": dtos})
}

// CreateQuarter starts filing for a year+quarter pair.
func (h *Handler) CreateQuarter(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))

	var req CreateQuarterRequest
	if !h.decode(w, r, &req) {
		return
	}

	name, err := engine.ParseQuarterName(req.Quarter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quarter name", err)
		return
	}

	quarter, err := h.Filing.CreateQuarter(r.Context(), id, req.Year, name)
	if err != nil {
		h.writeDomainError(w, "Failed to create quarter", err)
		return
	}

	h.log.Info().
		Str("quarter_id", string(quarter.ID)).
		Int("year", quarter.Year).
		Str("quarter", string(quarter.Quarter)).
		Msg("quarter created")
	writeJSON(w, http.StatusCreated, toQuarterDTO(quarter, nil))
}

// GetQuarter returns a quarter with its completion detail.
func (h *Handler) GetQuarter(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	quarter, completion, err := h.Filing.GetQuarter(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get quarter", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuarterDTO(quarter, &completion))
}

// GetSlots returns the quarter's filed days in date order.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	slots, err := h.Filing.Slots(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get slots", err)
		return
	}

	dates := make([]engine.Date, 0, len(slots))
	for d := range slots {
		dates = append(dates, d)
	}
	engine.SortDates(dates)

	dtos := make([]DailySlotDTO, len(dates))
	for i, d := range dates {
		dtos[i] = toDailySlotDTO(slots[d])
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": dtos})
}

// UpsertSlot edits a single day. Invalid slots are stored and flagged.
func (h *Handler) UpsertSlot(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	date, err := engine.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req UpsertSlotRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, result, err := h.Filing.UpsertDaySlot(r.Context(), id, date, filing.DayEdit{
		LocationType:        engine.LocationType(req.LocationType),
		TimeStart:           req.TimeStart,
		TimeEnd:             req.TimeEnd,
		OvernightLocationID: engine.LocationID(req.OvernightLocationID),
	})
	if err != nil {
		h.writeDomainError(w, "Failed to save slot", err)
		return
	}

	writeJSON(w, http.StatusOK, UpsertSlotResponse{
		Slot:   toDailySlotDTO(slot),
		Valid:  result.Valid,
		Reason: result.Reason,
	})
}

// ApplyPattern expands a weekly pattern across the quarter.
func (h *Handler) ApplyPattern(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))

	var req ApplyPatternRequest
	if !h.decode(w, r, &req) {
		return
	}

	week, err := toWeeklyPattern(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}
	mode, ok := engine.ParseApplyMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid apply mode", nil)
		return
	}

	quarter, completion, err := h.Filing.ApplyPattern(r.Context(), id, week, mode)
	if err != nil {
		h.writeDomainError(w, "Failed to apply pattern", err)
		return
	}

	h.log.Info().
		Str("quarter_id", string(id)).
		Str("mode", string(mode)).
		Int("days_completed", completion.DaysCompleted).
		Msg("pattern applied")
	writeJSON(w, http.StatusOK, toQuarterDTO(quarter, &completion))
}

// ExtractPattern reverse-engineers a weekly pattern from filed slots.
func (h *Handler) ExtractPattern(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	week, err := h.Filing.ExtractPattern(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to extract pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pattern": toPatternDTO(week)})
}

// SubmitQuarter submits a fully filed quarter.
func (h *Handler) SubmitQuarter(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	quarter, err := h.Filing.Submit(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to submit quarter", err)
		return
	}

	h.log.Info().Str("quarter_id", string(id)).Msg("quarter submitted")
	writeJSON(w, http.StatusOK, toQuarterDTO(quarter, nil))
}

// GetCompletion returns the completion summary including missing dates.
func (h *Handler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	id := engine.QuarterID(chi.URLParam(r, "id"))
	quarter, completion, err := h.Filing.GetQuarter(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get completion", err)
		return
	}

	missing := make([]string, 0, len(completion.MissingDates))
	for _, d := range completion.MissingDates {
		missing = append(missing, d.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quarter_id":            string(quarter.ID),
		"days_completed":        completion.DaysCompleted,
		"total_days":            completion.TotalDays,
		"completion_percentage": completion.CompletionPercentage,
		"missing_dates":         missing,
		"is_complete":           completion.IsComplete(),
	})
}

// =============================================================================
// PATTERN HANDLERS
// =============================================================================

// ValidatePattern validates a pattern against the athlete's locations
// without touching any quarter.
func (h *Handler) ValidatePattern(w http.ResponseWriter, r *http.Request) {
	var req ValidatePatternRequest
	if !h.decode(w, r, &req) {
		return
	}

	locations, err := h.Filing.Locations(r.Context(), engine.AthleteID(req.AthleteID))
	if err != nil {
		h.writeDomainError(w, "Failed to load locations", err)
		return
	}

	week, err := toWeeklyPattern(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}

	eng := engine.NewPatternEngineFrom(week, locations)
	days := make(map[string]DayValidationDTO, 7)
	for d, res := range eng.Validate() {
		days[d.Key()] = DayValidationDTO{Valid: res.Valid, Reason: res.Reason}
	}
	writeJSON(w, http.StatusOK, PatternValidationDTO{
		Days:       days,
		Stats:      toStatsDTO(eng.Stats()),
		FullyValid: eng.FullyValid(),
	})
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns the athlete's saved templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))
	templates, err := h.Filing.Templates(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to list templates", err)
		return
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": dtos})
}

// SaveTemplate saves a pattern under a name. Invalid patterns are
// rejected with per-day reasons and nothing is persisted.
func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	id := engine.AthleteID(chi.URLParam(r, "id"))

	var req SaveTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	week, err := toWeeklyPattern(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}

	tmpl, err := h.Filing.SaveTemplate(r.Context(), id, req.Name, req.Description, week)
	if err != nil {
		var invalid *engine.InvalidPatternError
		if errors.As(err, &invalid) {
			reasons := make(map[string]string, len(invalid.Reasons))
			for d, reason := range invalid.Reasons {
				reasons[d.Key()] = reason
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Pattern has invalid days",
				"reasons": reasons,
			})
			return
		}
		h.writeDomainError(w, "Failed to save template", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(tmpl))
}

// ApplyTemplate applies a saved template to a quarter and counts the use.
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id := engine.TemplateID(chi.URLParam(r, "id"))

	var req ApplyTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	mode, ok := engine.ParseApplyMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid apply mode", nil)
		return
	}

	quarter, completion, err := h.Filing.ApplyTemplate(r.Context(), id, engine.QuarterID(req.QuarterID), mode)
	if err != nil {
		h.writeDomainError(w, "Failed to apply template", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuarterDTO(quarter, &completion))
}

// SetDefaultTemplate marks a template as the athlete's default.
func (h *Handler) SetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	id := engine.TemplateID(chi.URLParam(r, "id"))

	tmpl, err := h.Store.GetTemplate(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get template", err)
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "Template not found", nil)
		return
	}

	if err := h.Filing.SetDefaultTemplate(r.Context(), tmpl.AthleteID, id); err != nil {
		h.writeDomainError(w, "Failed to set default template", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "default set"})
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorResponse is the JSON shape for all error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeDomainError maps domain errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// toWeeklyHours parses the request hours map. Days absent from the
// request are closed; a day needs both start and end or neither.
func toWeeklyHours(dto map[string]DayHoursDTO) (engine.WeeklyHours, error) {
	hours := make(engine.WeeklyHours, 7)
	for k, dh := range dto {
		d, err := engine.ParseWeekday(k)
		if err != nil {
			return nil, err
		}
		if dh.Start == nil || dh.End == nil {
			hours[d] = engine.DayHours{}
			continue
		}
		open, err := engine.ParseTimeOfDay(*dh.Start)
		if err != nil {
			return nil, err
		}
		close, err := engine.ParseTimeOfDay(*dh.End)
		if err != nil {
			return nil, err
		}
		hours[d] = engine.DayHours{Open: &open, Close: &close}
	}
	return hours, nil
}
