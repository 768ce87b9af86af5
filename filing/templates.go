/*
templates.go - Named reusable patterns with usage accounting

PURPOSE:
  Templates are saved WeeklyPatterns an athlete reapplies quarter after
  quarter. Saving is gated on full validity; applying delegates to the
  quarter applier and bumps the usage counter exactly once per
  successful application, even when FillOnly changed nothing.
*/
package filing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/whereabouts-engine/engine"
)

// SaveTemplate persists a pattern under a name. Rejected with
// InvalidPatternError (nothing persisted) while any day fails
// validation. New templates start at usage_count 0, not default.
func (s *Service) SaveTemplate(ctx context.Context, athleteID engine.AthleteID, name, description string, week engine.WeeklyPattern) (engine.Template, error) {
	athlete, err := s.store.GetAthlete(ctx, athleteID)
	if err != nil {
		return engine.Template{}, err
	}
	if athlete == nil {
		return engine.Template{}, engine.ErrAthleteNotFound
	}

	locations, err := s.store.LoadLocations(ctx, athleteID)
	if err != nil {
		return engine.Template{}, err
	}

	if stats := engine.ComputeStats(week, locations); stats.InvalidDays > 0 {
		reasons := make(map[engine.Weekday]string)
		for d, r := range engine.NewPatternEngineFrom(week, locations).Validate() {
			if !r.Valid {
				reasons[d] = r.Reason
			}
		}
		return engine.Template{}, &engine.InvalidPatternError{InvalidDays: stats.InvalidDays, Reasons: reasons}
	}

	template := engine.Template{
		ID:          engine.TemplateID(uuid.NewString()),
		AthleteID:   athleteID,
		Name:        name,
		Description: description,
		Pattern:     week.Clone(),
		CreatedAt:   time.Now(),
	}
	if err := s.store.SaveTemplate(ctx, template); err != nil {
		return engine.Template{}, err
	}
	return template, nil
}

// Templates lists the athlete's saved templates.
func (s *Service) Templates(ctx context.Context, athleteID engine.AthleteID) ([]engine.Template, error) {
	return s.store.ListTemplates(ctx, athleteID)
}

// ApplyTemplate expands the template onto the quarter, then increments
// the template's usage count. The increment happens exactly once per
// successful application regardless of how many dates actually changed.
func (s *Service) ApplyTemplate(ctx context.Context, templateID engine.TemplateID, quarterID engine.QuarterID, mode engine.ApplyMode) (engine.Quarter, engine.Completion, error) {
	template, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}
	if template == nil {
		return engine.Quarter{}, engine.Completion{}, engine.ErrTemplateNotFound
	}

	quarter, completion, err := s.ApplyPattern(ctx, quarterID, template.Pattern, mode)
	if err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}

	if err := s.store.IncrementTemplateUsage(ctx, templateID); err != nil {
		return engine.Quarter{}, engine.Completion{}, err
	}
	return quarter, completion, nil
}

// SetDefaultTemplate marks the template as the athlete's default. The
// store clears the previous default atomically; at most one default
// exists at any point.
func (s *Service) SetDefaultTemplate(ctx context.Context, athleteID engine.AthleteID, templateID engine.TemplateID) error {
	return s.store.SetDefaultTemplate(ctx, athleteID, templateID)
}
