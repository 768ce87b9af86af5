/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Persisted
  field names follow the stored shapes (quarter_id, slot_60min, ...) so
  the API stays round-trip-compatible with existing data.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request structs carry go-playground/validator tags; handlers run the
  shared validator before touching domain logic. Domain-level rules
  (slot validity, lifecycle gating) stay in the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: The domain model these shapes mirror
*/
package api

import (
	"time"

	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// ATHLETES AND LOCATIONS
// =============================================================================

// AthleteDTO represents an athlete in API responses.
type AthleteDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Sport     string `json:"sport,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateAthleteRequest is the request to register an athlete.
type CreateAthleteRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Sport string `json:"sport"`
}

// DayHoursDTO is one weekday's open window; null start/end means closed.
type DayHoursDTO struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// LocationDTO represents a registered location with its weekly hours,
// keyed by lowercase weekday.
type LocationDTO struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Address     string                 `json:"address,omitempty"`
	WeeklyHours map[string]DayHoursDTO `json:"weekly_hours"`
}

// PutLocationRequest registers or replaces a location for a type.
type PutLocationRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Address     string                 `json:"address"`
	WeeklyHours map[string]DayHoursDTO `json:"weekly_hours" validate:"required"`
}

// =============================================================================
// QUARTERS AND SLOTS
// =============================================================================

// QuarterDTO represents a quarter with its derived progress fields.
type QuarterDTO struct {
	ID                   string   `json:"id"`
	AthleteID            string   `json:"athlete_id"`
	Year                 int      `json:"year"`
	Quarter              string   `json:"quarter"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	Status               string   `json:"status"`
	DaysCompleted        int      `json:"days_completed"`
	TotalDays            int      `json:"total_days"`
	CompletionPercentage int      `json:"completion_percentage"`
	FilingDeadline       string   `json:"filing_deadline"`
	SubmittedAt          string   `json:"submitted_at,omitempty"`
	MissingDates         []string `json:"missing_dates,omitempty"`
}

// CreateQuarterRequest starts filing for a year+quarter pair.
type CreateQuarterRequest struct {
	Year    int    `json:"year" validate:"required,min=2000,max=2100"`
	Quarter string `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4"`
}

// SlotWindowDTO is the declared 60-minute window with its location.
type SlotWindowDTO struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LocationType    string `json:"location_type"`
	LocationID      string `json:"location_id,omitempty"`
	LocationName    string `json:"location_name,omitempty"`
	LocationAddress string `json:"location_address,omitempty"`
}

// DailySlotDTO represents one filed day.
type DailySlotDTO struct {
	QuarterID           string        `json:"quarter_id"`
	Date                string        `json:"date"`
	Slot                SlotWindowDTO `json:"slot_60min"`
	OvernightLocationID string        `json:"overnight_location_id,omitempty"`
	IsComplete          bool          `json:"is_complete"`
}

// UpsertSlotRequest is a manual single-day edit.
type UpsertSlotRequest struct {
	LocationType        string `json:"location_type" validate:"required"`
	TimeStart           string `json:"time_start"`
	TimeEnd             string `json:"time_end"`
	OvernightLocationID string `json:"overnight_location_id"`
}

// UpsertSlotResponse returns the stored slot plus inline feedback.
type UpsertSlotResponse struct {
	Slot   DailySlotDTO `json:"slot"`
	Valid  bool         `json:"valid"`
	Reason string       `json:"reason,omitempty"`
}

// =============================================================================
// PATTERNS
// =============================================================================

// DayPatternDTO is one weekday's recurring declaration.
type DayPatternDTO struct {
	LocationType string `json:"location_type"`
	TimeStart    string `json:"time_start"`
	TimeEnd      string `json:"time_end"`
}

// PatternDTO is a full week keyed by lowercase weekday.
type PatternDTO map[string]DayPatternDTO

// ApplyPatternRequest expands a pattern onto a quarter.
type ApplyPatternRequest struct {
	Pattern PatternDTO `json:"pattern" validate:"required"`
	Mode    string     `json:"mode" validate:"required,oneof=fill overwrite"`
}

// ValidatePatternRequest asks for per-day feedback and stats.
type ValidatePatternRequest struct {
	AthleteID string     `json:"athlete_id" validate:"required"`
	Pattern   PatternDTO `json:"pattern" validate:"required"`
}

// DayValidationDTO is one day's validation outcome.
type DayValidationDTO struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// PatternValidationDTO is the validate-pattern response.
type PatternValidationDTO struct {
	Days       map[string]DayValidationDTO `json:"days"`
	Stats      PatternStatsDTO             `json:"stats"`
	FullyValid bool                        `json:"fully_valid"`
}

// PatternStatsDTO mirrors engine.PatternStats.
type PatternStatsDTO struct {
	CompletedDays int `json:"completed_days"`
	ValidDays     int `json:"valid_days"`
	InvalidDays   int `json:"invalid_days"`
	HomeCount     int `json:"home_count"`
	TrainingCount int `json:"training_count"`
	GymCount      int `json:"gym_count"`
}

// =============================================================================
// TEMPLATES
// =============================================================================

// TemplateDTO represents a saved template.
type TemplateDTO struct {
	ID          string     `json:"id"`
	AthleteID   string     `json:"athlete_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Pattern     PatternDTO `json:"pattern"`
	UsageCount  int        `json:"usage_count"`
	IsDefault   bool       `json:"is_default"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

// SaveTemplateRequest saves the given pattern under a name.
type SaveTemplateRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Pattern     PatternDTO `json:"pattern" validate:"required"`
}

// ApplyTemplateRequest applies a template to a quarter.
type ApplyTemplateRequest struct {
	QuarterID string `json:"quarter_id" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=fill overwrite"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAthleteDTO(a engine.Athlete) AthleteDTO {
	return AthleteDTO{
		ID:        string(a.ID),
		Name:      a.Name,
		Email:     a.Email,
		Sport:     a.Sport,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func toLocationDTO(l engine.Location) LocationDTO {
	hours := make(map[string]DayHoursDTO, 7)
	for _, d := range engine.Weekdays {
		h := l.Hours[d]
		var dto DayHoursDTO
		if h.Open != nil {
			s := h.Open.String()
			dto.Start = &s
		}
		if h.Close != nil {
			s := h.Close.String()
			dto.End = &s
		}
		hours[d.Key()] = dto
	}
	return LocationDTO{
		ID:          string(l.ID),
		Type:        string(l.Type),
		Name:        l.Name,
		Address:     l.Address,
		WeeklyHours: hours,
	}
}

func toQuarterDTO(q engine.Quarter, completion *engine.Completion) QuarterDTO {
	dto := QuarterDTO{
		ID:                   string(q.ID),
		AthleteID:            string(q.AthleteID),
		Year:                 q.Year,
		Quarter:              string(q.Quarter),
		StartDate:            q.StartDate.String(),
		EndDate:              q.EndDate.String(),
		Status:               string(q.Status),
		DaysCompleted:        q.DaysCompleted,
		TotalDays:            q.TotalDays,
		CompletionPercentage: q.CompletionPercentage,
		FilingDeadline:       q.FilingDeadline.String(),
	}
	if q.SubmittedAt != nil {
		dto.SubmittedAt = q.SubmittedAt.Format(time.RFC3339)
	}
	if completion != nil {
		dto.MissingDates = make([]string, 0, len(completion.MissingDates))
		for _, d := range completion.MissingDates {
			dto.MissingDates = append(dto.MissingDates, d.String())
		}
	}
	return dto
}

func toDailySlotDTO(s engine.DailySlot) DailySlotDTO {
	return DailySlotDTO{
		QuarterID: string(s.QuarterID),
		Date:      s.Date.String(),
		Slot: SlotWindowDTO{
			StartTime:       s.Slot.StartTime,
			EndTime:         s.Slot.EndTime,
			LocationType:    string(s.Slot.LocationType),
			LocationID:      string(s.Slot.LocationID),
			LocationName:    s.Slot.LocationName,
			LocationAddress: s.Slot.LocationAddress,
		},
		OvernightLocationID: string(s.OvernightLocationID),
		IsComplete:          s.IsComplete,
	}
}

func toTemplateDTO(t engine.Template) TemplateDTO {
	return TemplateDTO{
		ID:          string(t.ID),
		AthleteID:   string(t.AthleteID),
		Name:        t.Name,
		Description: t.Description,
		Pattern:     toPatternDTO(t.Pattern),
		UsageCount:  t.UsageCount,
		IsDefault:   t.IsDefault,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func toPatternDTO(week engine.WeeklyPattern) PatternDTO {
	out := make(PatternDTO, 7)
	for _, d := range engine.Weekdays {
		p := week.Day(d)
		out[d.Key()] = DayPatternDTO{
			LocationType: string(p.LocationType),
			TimeStart:    p.TimeStart,
			TimeEnd:      p.TimeEnd,
		}
	}
	return out
}

// toWeeklyPattern builds a full week from the DTO. Days absent from the
// request keep the default day, matching how patterns are created.
func toWeeklyPattern(dto PatternDTO) (engine.WeeklyPattern, error) {
	week := engine.NewWeeklyPattern()
	for k, p := range dto {
		d, err := engine.ParseWeekday(k)
		if err != nil {
			return nil, err
		}
		week[d] = engine.DaySlotPattern{
			LocationType: engine.LocationType(p.LocationType),
			TimeStart:    p.TimeStart,
			TimeEnd:      p.TimeEnd,
		}
	}
	return week, nil
}

func toStatsDTO(s engine.PatternStats) PatternStatsDTO {
	return PatternStatsDTO{
		CompletedDays: s.CompletedDays,
		ValidDays:     s.ValidDays,
		InvalidDays:   s.InvalidDays,
		HomeCount:     s.HomeCount,
		TrainingCount: s.TrainingCount,
		GymCount:      s.GymCount,
	}
}
