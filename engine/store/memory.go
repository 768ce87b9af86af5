// Package store provides engine.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/whereabouts-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	athletes  map[engine.AthleteID]engine.Athlete
	locations map[engine.AthleteID]map[engine.LocationType]engine.Location
	quarters  map[engine.QuarterID]engine.Quarter
	slots     map[engine.QuarterID]map[engine.Date]engine.DailySlot
	templates map[engine.TemplateID]engine.Template
}

func NewMemory() *Memory {
	return &Memory{
		athletes:  make(map[engine.AthleteID]engine.Athlete),
		locations: make(map[engine.AthleteID]map[engine.LocationType]engine.Location),
		quarters:  make(map[engine.QuarterID]engine.Quarter),
		slots:     make(map[engine.QuarterID]map[engine.Date]engine.DailySlot),
		templates: make(map[engine.TemplateID]engine.Template),
	}
}

// =============================================================================
// ATHLETES
// =============================================================================

func (m *Memory) SaveAthlete(_ context.Context, a engine.Athlete) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.athletes[a.ID] = a
	return nil
}

func (m *Memory) GetAthlete(_ context.Context, id engine.AthleteID) (*engine.Athlete, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.athletes[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) ListAthletes(_ context.Context) ([]engine.Athlete, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Athlete, 0, len(m.athletes))
	for _, a := range m.athletes {
		out = append(out, a)
	}
	return out, nil
}

// =============================================================================
// LOCATIONS
// =============================================================================

func (m *Memory) SaveLocation(_ context.Context, athleteID engine.AthleteID, loc engine.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locations[athleteID] == nil {
		m.locations[athleteID] = make(map[engine.LocationType]engine.Location)
	}
	m.locations[athleteID][loc.Type] = loc
	return nil
}

func (m *Memory) LoadLocations(_ context.Context, athleteID engine.AthleteID) (map[engine.LocationType]*engine.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.LocationType]*engine.Location, len(m.locations[athleteID]))
	for t, loc := range m.locations[athleteID] {
		l := loc
		out[t] = &l
	}
	return out, nil
}

// =============================================================================
// QUARTERS
// =============================================================================

func (m *Memory) SaveQuarter(_ context.Context, q engine.Quarter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quarters[q.ID] = q
	return nil
}

func (m *Memory) GetQuarter(_ context.Context, id engine.QuarterID) (*engine.Quarter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quarters[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *Memory) FindQuarter(_ context.Context, athleteID engine.AthleteID, year int, name engine.QuarterName) (*engine.Quarter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quarters {
		if q.AthleteID == athleteID && q.Year == year && q.Quarter == name {
			q := q
			return &q, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListQuarters(_ context.Context, athleteID engine.AthleteID) ([]engine.Quarter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Quarter
	for _, q := range m.quarters {
		if q.AthleteID == athleteID {
			out = append(out, q)
		}
	}
	return out, nil
}

// =============================================================================
// SLOTS
// =============================================================================

func (m *Memory) LoadSlots(_ context.Context, quarterID engine.QuarterID) (map[engine.Date]engine.DailySlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.Date]engine.DailySlot, len(m.slots[quarterID]))
	for d, s := range m.slots[quarterID] {
		out[d] = s
	}
	return out, nil
}

// SaveSlots replaces the quarter's slot set. The copy is taken under the
// lock so the swap is atomic to readers.
func (m *Memory) SaveSlots(_ context.Context, quarterID engine.QuarterID, slots map[engine.Date]engine.DailySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	replacement := make(map[engine.Date]engine.DailySlot, len(slots))
	for d, s := range slots {
		replacement[d] = s
	}
	m.slots[quarterID] = replacement
	return nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (m *Memory) SaveTemplate(_ context.Context, t engine.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Pattern = t.Pattern.Clone()
	m.templates[t.ID] = t
	return nil
}

func (m *Memory) GetTemplate(_ context.Context, id engine.TemplateID) (*engine.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	t.Pattern = t.Pattern.Clone()
	return &t, nil
}

func (m *Memory) ListTemplates(_ context.Context, athleteID engine.AthleteID) ([]engine.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Template
	for _, t := range m.templates {
		if t.AthleteID == athleteID {
			t.Pattern = t.Pattern.Clone()
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) IncrementTemplateUsage(_ context.Context, id engine.TemplateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return engine.ErrTemplateNotFound
	}
	t.UsageCount++
	m.templates[id] = t
	return nil
}

// SetDefaultTemplate clears any previous default under the same lock,
// so there is never a moment with two defaults.
func (m *Memory) SetDefaultTemplate(_ context.Context, athleteID engine.AthleteID, id engine.TemplateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.templates[id]
	if !ok || target.AthleteID != athleteID {
		return engine.ErrTemplateNotFound
	}
	for tid, t := range m.templates {
		if t.AthleteID == athleteID && t.IsDefault {
			t.IsDefault = false
			m.templates[tid] = t
		}
	}
	target.IsDefault = true
	m.templates[id] = target
	return nil
}

// =============================================================================
// RESET
// =============================================================================

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.athletes = make(map[engine.AthleteID]engine.Athlete)
	m.locations = make(map[engine.AthleteID]map[engine.LocationType]engine.Location)
	m.quarters = make(map[engine.QuarterID]engine.Quarter)
	m.slots = make(map[engine.QuarterID]map[engine.Date]engine.DailySlot)
	m.templates = make(map[engine.TemplateID]engine.Template)
	return nil
}
