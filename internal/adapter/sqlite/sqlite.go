// Package sqlite provides a SQLite implementation of the domain.Store port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthlog/internal/domain"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of domain.Store. Instants are persisted
// as RFC 3339 strings; loading routes every timestamp through the clock so
// legacy naive rows keep their wall-clock local day.
type Store struct {
	db    *sql.DB
	clock *domain.Clock
}

// NewMemoryStore creates an in-memory SQLite store, for tests.
func NewMemoryStore(clock *domain.Clock) (*Store, error) {
	return newStore(":memory:", clock)
}

// NewFileStore creates a file-backed SQLite store.
func NewFileStore(path string, clock *domain.Clock) (*Store, error) {
	return newStore(path, clock)
}

func newStore(dsn string, clock *domain.Clock) (*Store, error) {
	if clock == nil {
		clock = domain.NewClock(nil)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, clock: clock}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS glucose (
	id TEXT PRIMARY KEY,
	instant TEXT NOT NULL,
	value REAL NOT NULL,
	context TEXT NOT NULL,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pressure (
	id TEXT PRIMARY KEY,
	instant TEXT NOT NULL,
	systolic REAL NOT NULL,
	diastolic REAL NOT NULL,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS insulin (
	id TEXT PRIMARY KEY,
	instant TEXT NOT NULL,
	dose REAL NOT NULL,
	type TEXT NOT NULL,
	context TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS medications (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	food_relation TEXT NOT NULL,
	usage_count INTEGER NOT NULL,
	last_used TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS thresholds (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	glucose_min REAL NOT NULL, glucose_max REAL NOT NULL,
	systolic_min REAL NOT NULL, systolic_max REAL NOT NULL,
	diastolic_min REAL NOT NULL, diastolic_max REAL NOT NULL
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure the interface is met.
var _ domain.Store = (*Store)(nil)

// replaceAll rewrites a table inside one transaction. The save-all contract
// carries the complete collection, so the previous rows are simply dropped.
func (s *Store) replaceAll(ctx context.Context, table string, rows func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := rows(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadGlucose returns all stored glucose measurements.
func (s *Store) LoadGlucose(ctx context.Context) ([]domain.GlucoseMeasurement, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, instant, value, context, status FROM glucose")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GlucoseMeasurement
	for rows.Next() {
		var m domain.GlucoseMeasurement
		var instant string
		if err := rows.Scan(&m.ID, &instant, &m.Value, &m.Context, &m.Status); err != nil {
			return nil, err
		}
		m.Instant = s.clock.ParseOrNow(instant)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveGlucose replaces the stored glucose collection.
func (s *Store) SaveGlucose(ctx context.Context, records []domain.GlucoseMeasurement) error {
	return s.replaceAll(ctx, "glucose", func(tx *sql.Tx) error {
		for _, m := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO glucose (id, instant, value, context, status) VALUES (?, ?, ?, ?, ?)",
				m.ID, encodeInstant(m.Instant), m.Value, m.Context, m.Status)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadPressure returns all stored pressure measurements.
func (s *Store) LoadPressure(ctx context.Context) ([]domain.PressureMeasurement, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, instant, systolic, diastolic, status FROM pressure")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PressureMeasurement
	for rows.Next() {
		var m domain.PressureMeasurement
		var instant string
		if err := rows.Scan(&m.ID, &instant, &m.Systolic, &m.Diastolic, &m.Status); err != nil {
			return nil, err
		}
		m.Instant = s.clock.ParseOrNow(instant)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePressure replaces the stored pressure collection.
func (s *Store) SavePressure(ctx context.Context, records []domain.PressureMeasurement) error {
	return s.replaceAll(ctx, "pressure", func(tx *sql.Tx) error {
		for _, m := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO pressure (id, instant, systolic, diastolic, status) VALUES (?, ?, ?, ?, ?)",
				m.ID, encodeInstant(m.Instant), m.Systolic, m.Diastolic, m.Status)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadInsulin returns all stored insulin entries.
func (s *Store) LoadInsulin(ctx context.Context) ([]domain.InsulinEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, instant, dose, type, context, notes FROM insulin")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InsulinEntry
	for rows.Next() {
		var e domain.InsulinEntry
		var instant string
		if err := rows.Scan(&e.ID, &instant, &e.Dose, &e.Type, &e.Context, &e.Notes); err != nil {
			return nil, err
		}
		e.Instant = s.clock.ParseOrNow(instant)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveInsulin replaces the stored insulin collection.
func (s *Store) SaveInsulin(ctx context.Context, records []domain.InsulinEntry) error {
	return s.replaceAll(ctx, "insulin", func(tx *sql.Tx) error {
		for _, e := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO insulin (id, instant, dose, type, context, notes) VALUES (?, ?, ?, ?, ?, ?)",
				e.ID, encodeInstant(e.Instant), e.Dose, e.Type, e.Context, e.Notes)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadMedications returns all stored medication records.
func (s *Store) LoadMedications(ctx context.Context) ([]domain.MedicationRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, food_relation, usage_count, last_used FROM medications")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MedicationRecord
	for rows.Next() {
		var r domain.MedicationRecord
		var lastUsed string
		if err := rows.Scan(&r.ID, &r.Name, &r.FoodRelation, &r.UsageCount, &lastUsed); err != nil {
			return nil, err
		}
		r.LastUsed = s.clock.ParseOrNow(lastUsed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveMedications replaces the stored medication collection.
func (s *Store) SaveMedications(ctx context.Context, records []domain.MedicationRecord) error {
	return s.replaceAll(ctx, "medications", func(tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO medications (id, name, food_relation, usage_count, last_used) VALUES (?, ?, ?, ?, ?)",
				r.ID, r.Name, r.FoodRelation, r.UsageCount, encodeInstant(r.LastUsed))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadThresholds returns the stored thresholds, or nil when none were saved.
func (s *Store) LoadThresholds(ctx context.Context) (*domain.Thresholds, error) {
	var t domain.Thresholds
	err := s.db.QueryRowContext(ctx,
		"SELECT glucose_min, glucose_max, systolic_min, systolic_max, diastolic_min, diastolic_max FROM thresholds WHERE id = 1").
		Scan(&t.Glucose.Min, &t.Glucose.Max, &t.Systolic.Min, &t.Systolic.Max, &t.Diastolic.Min, &t.Diastolic.Max)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveThresholds replaces the stored thresholds.
func (s *Store) SaveThresholds(ctx context.Context, t domain.Thresholds) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO thresholds
			(id, glucose_min, glucose_max, systolic_min, systolic_max, diastolic_min, diastolic_max)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		t.Glucose.Min, t.Glucose.Max, t.Systolic.Min, t.Systolic.Max, t.Diastolic.Min, t.Diastolic.Max)
	return err
}

func encodeInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}
