/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Implements the persistence contracts the filing service drives
  (athletes, locations, quarters, daily slots, templates) using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

ATOMICITY:
  SaveSlots replaces a quarter's entire slot set inside one database
  transaction: delete-then-insert, commit or nothing. Applying a weekly
  pattern across ~90 dates is therefore never partially visible.
  SetDefaultTemplate clears the previous default and sets the new one
  in the same transaction.

KEY TABLES:
  athletes:     Filing entities
  locations:    One row per (athlete, location_type), hours as JSON
  quarters:     One row per (athlete, year, quarter) - unique index
  daily_slots:  One row per (quarter, date) - primary key
  templates:    Named patterns, pattern encoded per-day as JSON

CONCURRENCY:
  Last-writer-wins, per the engine's concurrency model. A sync.RWMutex
  serializes writers; SQLite runs in WAL mode so readers don't block.

USAGE:
  store, err := sqlite.New("./data/whereabouts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definitions and contracts
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/whereabouts-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Athletes (filing entities)
	CREATE TABLE IF NOT EXISTS athletes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		sport TEXT,
		created_at TEXT NOT NULL
	);

	-- Locations: one per (athlete, type), weekly hours as JSON
	CREATE TABLE IF NOT EXISTS locations (
		athlete_id TEXT NOT NULL,
		location_type TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		hours_json TEXT NOT NULL,
		PRIMARY KEY (athlete_id, location_type)
	);

	-- Quarters: at most one per athlete per year+quarter
	CREATE TABLE IF NOT EXISTS quarters (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		quarter TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		days_completed INTEGER NOT NULL DEFAULT 0,
		total_days INTEGER NOT NULL,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		filing_deadline TEXT NOT NULL,
		submitted_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_quarters_unique_period
		ON quarters(athlete_id, year, quarter);
	CREATE INDEX IF NOT EXISTS idx_quarters_athlete
		ON quarters(athlete_id);

	-- Daily slots: one per (quarter, date)
	CREATE TABLE IF NOT EXISTS daily_slots (
		quarter_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		location_type TEXT,
		location_id TEXT,
		location_name TEXT,
		location_address TEXT,
		overnight_location_id TEXT,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (quarter_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_daily_slots_quarter
		ON daily_slots(quarter_id);

	-- Templates: named reusable patterns
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		pattern_json TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_athlete
		ON templates(athlete_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATHLETES
// =============================================================================

func (s *Store) SaveAthlete(ctx context.Context, a engine.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO athletes (id, name, email, sport, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email, sport = excluded.sport
	`, a.ID, a.Name, a.Email, a.Sport, createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetAthlete(ctx context.Context, id engine.AthleteID) (*engine.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, sport, created_at FROM athletes WHERE id = ?
	`, id)

	var a engine.Athlete
	var createdAt string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Sport, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func (s *Store) ListAthletes(ctx context.Context) ([]engine.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, sport, created_at FROM athletes ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Athlete
	for rows.Next() {
		var a engine.Athlete
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Sport, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// LOCATIONS
// =============================================================================

func (s *Store) SaveLocation(ctx context.Context, athleteID engine.AthleteID, loc engine.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hoursJSON, err := json.Marshal(loc.Hours)
	if err != nil {
		return fmt.Errorf("encode hours: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO locations (athlete_id, location_type, id, name, address, hours_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id, location_type) DO UPDATE SET
			id = excluded.id, name = excluded.name,
			address = excluded.address, hours_json = excluded.hours_json
	`, athleteID, loc.Type, loc.ID, loc.Name, loc.Address, string(hoursJSON))
	return err
}

func (s *Store) LoadLocations(ctx context.Context, athleteID engine.AthleteID) (map[engine.LocationType]*engine.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT location_type, id, name, address, hours_json
		FROM locations WHERE athlete_id = ?
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[engine.LocationType]*engine.Location)
	for rows.Next() {
		var loc engine.Location
		var hoursJSON string
		if err := rows.Scan(&loc.Type, &loc.ID, &loc.Name, &loc.Address, &hoursJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(hoursJSON), &loc.Hours); err != nil {
			return nil, fmt.Errorf("decode hours for %s: %w", loc.Type, err)
		}
		l := loc
		out[loc.Type] = &l
	}
	return out, rows.Err()
}

// =============================================================================
// QUARTERS
// =============================================================================

func (s *Store) SaveQuarter(ctx context.Context, q engine.Quarter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var submittedAt any
	if q.SubmittedAt != nil {
		submittedAt = q.SubmittedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quarters
		(id, athlete_id, year, quarter, start_date, end_date, status,
		 days_completed, total_days, completion_percentage, filing_deadline, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			days_completed = excluded.days_completed,
			completion_percentage = excluded.completion_percentage,
			submitted_at = excluded.submitted_at
	`, q.ID, q.AthleteID, q.Year, q.Quarter,
		q.StartDate.String(), q.EndDate.String(), q.Status,
		q.DaysCompleted, q.TotalDays, q.CompletionPercentage,
		q.FilingDeadline.String(), submittedAt)
	return err
}

func (s *Store) GetQuarter(ctx context.Context, id engine.QuarterID) (*engine.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanQuarterPtr(s.db.QueryRowContext(ctx, quarterSelect+` WHERE id = ?`, id))
}

func (s *Store) FindQuarter(ctx context.Context, athleteID engine.AthleteID, year int, name engine.QuarterName) (*engine.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanQuarterPtr(s.db.QueryRowContext(ctx,
		quarterSelect+` WHERE athlete_id = ? AND year = ? AND quarter = ?`,
		athleteID, year, name))
}

func (s *Store) ListQuarters(ctx context.Context, athleteID engine.AthleteID) ([]engine.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		quarterSelect+` WHERE athlete_id = ? ORDER BY year, quarter`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Quarter
	for rows.Next() {
		q, err := scanQuarter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

const quarterSelect = `
	SELECT id, athlete_id, year, quarter, start_date, end_date, status,
	       days_completed, total_days, completion_percentage, filing_deadline, submitted_at
	FROM quarters`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuarterPtr(row rowScanner) (*engine.Quarter, error) {
	q, err := scanQuarter(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func scanQuarter(row rowScanner) (engine.Quarter, error) {
	var q engine.Quarter
	var start, end, deadline string
	var submittedAt sql.NullString
	if err := row.Scan(&q.ID, &q.AthleteID, &q.Year, &q.Quarter, &start, &end, &q.Status,
		&q.DaysCompleted, &q.TotalDays, &q.CompletionPercentage, &deadline, &submittedAt); err != nil {
		return engine.Quarter{}, err
	}

	var err error
	if q.StartDate, err = engine.ParseDate(start); err != nil {
		return engine.Quarter{}, err
	}
	if q.EndDate, err = engine.ParseDate(end); err != nil {
		return engine.Quarter{}, err
	}
	if q.FilingDeadline, err = engine.ParseDate(deadline); err != nil {
		return engine.Quarter{}, err
	}
	if submittedAt.Valid {
		t, err := time.Parse(time.RFC3339, submittedAt.String)
		if err != nil {
			return engine.Quarter{}, err
		}
		q.SubmittedAt = &t
	}
	return q, nil
}

// =============================================================================
// DAILY SLOTS
// =============================================================================

func (s *Store) LoadSlots(ctx context.Context, quarterID engine.QuarterID) (map[engine.Date]engine.DailySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT quarter_id, date, start_time, end_time, location_type,
		       location_id, location_name, location_address,
		       overnight_location_id, is_complete
		FROM daily_slots WHERE quarter_id = ?
	`, quarterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[engine.Date]engine.DailySlot)
	for rows.Next() {
		var slot engine.DailySlot
		var date string
		var start, end, locType, locID, locName, locAddr, overnight sql.NullString
		if err := rows.Scan(&slot.QuarterID, &date, &start, &end, &locType,
			&locID, &locName, &locAddr, &overnight, &slot.IsComplete); err != nil {
			return nil, err
		}
		if slot.Date, err = engine.ParseDate(date); err != nil {
			return nil, err
		}
		slot.Slot = engine.SlotWindow{
			StartTime:       start.String,
			EndTime:         end.String,
			LocationType:    engine.LocationType(locType.String),
			LocationID:      engine.LocationID(locID.String),
			LocationName:    locName.String,
			LocationAddress: locAddr.String,
		}
		slot.OvernightLocationID = engine.LocationID(overnight.String)
		out[slot.Date] = slot
	}
	return out, rows.Err()
}

// SaveSlots replaces the quarter's entire slot set in one transaction.
// Either every row lands or none do.
func (s *Store) SaveSlots(ctx context.Context, quarterID engine.QuarterID, slots map[engine.Date]engine.DailySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_slots WHERE quarter_id = ?`, quarterID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_slots
		(quarter_id, date, start_time, end_time, location_type,
		 location_id, location_name, location_address, overnight_location_id, is_complete)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for date, slot := range slots {
		if _, err := stmt.ExecContext(ctx,
			quarterID, date.String(),
			slot.Slot.StartTime, slot.Slot.EndTime, slot.Slot.LocationType,
			slot.Slot.LocationID, slot.Slot.LocationName, slot.Slot.LocationAddress,
			slot.OvernightLocationID, slot.IsComplete,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (s *Store) SaveTemplate(ctx context.Context, t engine.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := json.Marshal(t.Pattern)
	if err != nil {
		return fmt.Errorf("encode pattern: %w", err)
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates
		(id, athlete_id, name, description, pattern_json, usage_count, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			pattern_json = excluded.pattern_json
	`, t.ID, t.AthleteID, t.Name, t.Description, string(patternJSON),
		t.UsageCount, t.IsDefault, createdAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetTemplate(ctx context.Context, id engine.TemplateID) (*engine.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, templateSelect+` WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTemplates(ctx context.Context, athleteID engine.AthleteID) ([]engine.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		templateSelect+` WHERE athlete_id = ? ORDER BY created_at`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const templateSelect = `
	SELECT id, athlete_id, name, description, pattern_json, usage_count, is_default, created_at
	FROM templates`

func scanTemplate(row rowScanner) (engine.Template, error) {
	var t engine.Template
	var patternJSON, createdAt string
	if err := row.Scan(&t.ID, &t.AthleteID, &t.Name, &t.Description,
		&patternJSON, &t.UsageCount, &t.IsDefault, &createdAt); err != nil {
		return engine.Template{}, err
	}
	if err := json.Unmarshal([]byte(patternJSON), &t.Pattern); err != nil {
		return engine.Template{}, fmt.Errorf("decode pattern: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func (s *Store) IncrementTemplateUsage(ctx context.Context, id engine.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrTemplateNotFound
	}
	return nil
}

// SetDefaultTemplate clears the previous default and marks the new one
// inside a single transaction.
func (s *Store) SetDefaultTemplate(ctx context.Context, athleteID engine.AthleteID, id engine.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE templates SET is_default = FALSE WHERE athlete_id = ? AND is_default = TRUE`,
		athleteID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE templates SET is_default = TRUE WHERE id = ? AND athlete_id = ?`,
		id, athleteID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrTemplateNotFound
	}

	return tx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"daily_slots", "templates", "quarters", "locations", "athletes"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
