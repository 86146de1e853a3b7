// Package postgres implements the domain.Store port on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"healthlog/internal/domain"
)

// Store wraps a *sql.DB and implements domain.Store. Instants live in
// TIMESTAMPTZ columns, so they come back as unambiguous zoned values and
// need no clock to interpret.
type Store struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*Store, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &Store{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *Store) Close() error {
	return d.sql.Close()
}

func (d *Store) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS glucose (id TEXT PRIMARY KEY, instant TIMESTAMPTZ NOT NULL, value DOUBLE PRECISION NOT NULL, context TEXT NOT NULL, status TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS pressure (id TEXT PRIMARY KEY, instant TIMESTAMPTZ NOT NULL, systolic DOUBLE PRECISION NOT NULL, diastolic DOUBLE PRECISION NOT NULL, status TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS insulin (id TEXT PRIMARY KEY, instant TIMESTAMPTZ NOT NULL, dose DOUBLE PRECISION NOT NULL, type TEXT NOT NULL, context TEXT NOT NULL, notes TEXT NOT NULL DEFAULT '');",
		"CREATE TABLE IF NOT EXISTS medications (id TEXT PRIMARY KEY, name TEXT NOT NULL, food_relation TEXT NOT NULL, usage_count INTEGER NOT NULL, last_used TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS thresholds (id INTEGER PRIMARY KEY CHECK (id = 1), glucose_min DOUBLE PRECISION NOT NULL, glucose_max DOUBLE PRECISION NOT NULL, systolic_min DOUBLE PRECISION NOT NULL, systolic_max DOUBLE PRECISION NOT NULL, diastolic_min DOUBLE PRECISION NOT NULL, diastolic_max DOUBLE PRECISION NOT NULL);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ensure the interface is met.
var _ domain.Store = (*Store)(nil)

func (d *Store) replaceAll(ctx context.Context, table string, rows func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
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
func (d *Store) LoadGlucose(ctx context.Context) ([]domain.GlucoseMeasurement, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, instant, value, context, status FROM glucose")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GlucoseMeasurement
	for rows.Next() {
		var m domain.GlucoseMeasurement
		if err := rows.Scan(&m.ID, &m.Instant, &m.Value, &m.Context, &m.Status); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveGlucose replaces the stored glucose collection.
func (d *Store) SaveGlucose(ctx context.Context, records []domain.GlucoseMeasurement) error {
	return d.replaceAll(ctx, "glucose", func(tx *sql.Tx) error {
		for _, m := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO glucose (id, instant, value, context, status) VALUES ($1, $2, $3, $4, $5)",
				m.ID, m.Instant, m.Value, m.Context, m.Status)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadPressure returns all stored pressure measurements.
func (d *Store) LoadPressure(ctx context.Context) ([]domain.PressureMeasurement, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, instant, systolic, diastolic, status FROM pressure")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PressureMeasurement
	for rows.Next() {
		var m domain.PressureMeasurement
		if err := rows.Scan(&m.ID, &m.Instant, &m.Systolic, &m.Diastolic, &m.Status); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePressure replaces the stored pressure collection.
func (d *Store) SavePressure(ctx context.Context, records []domain.PressureMeasurement) error {
	return d.replaceAll(ctx, "pressure", func(tx *sql.Tx) error {
		for _, m := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO pressure (id, instant, systolic, diastolic, status) VALUES ($1, $2, $3, $4, $5)",
				m.ID, m.Instant, m.Systolic, m.Diastolic, m.Status)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadInsulin returns all stored insulin entries.
func (d *Store) LoadInsulin(ctx context.Context) ([]domain.InsulinEntry, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, instant, dose, type, context, notes FROM insulin")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InsulinEntry
	for rows.Next() {
		var e domain.InsulinEntry
		if err := rows.Scan(&e.ID, &e.Instant, &e.Dose, &e.Type, &e.Context, &e.Notes); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveInsulin replaces the stored insulin collection.
func (d *Store) SaveInsulin(ctx context.Context, records []domain.InsulinEntry) error {
	return d.replaceAll(ctx, "insulin", func(tx *sql.Tx) error {
		for _, e := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO insulin (id, instant, dose, type, context, notes) VALUES ($1, $2, $3, $4, $5, $6)",
				e.ID, e.Instant, e.Dose, e.Type, e.Context, e.Notes)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadMedications returns all stored medication records.
func (d *Store) LoadMedications(ctx context.Context) ([]domain.MedicationRecord, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, name, food_relation, usage_count, last_used FROM medications")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MedicationRecord
	for rows.Next() {
		var r domain.MedicationRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.FoodRelation, &r.UsageCount, &r.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveMedications replaces the stored medication collection.
func (d *Store) SaveMedications(ctx context.Context, records []domain.MedicationRecord) error {
	return d.replaceAll(ctx, "medications", func(tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO medications (id, name, food_relation, usage_count, last_used) VALUES ($1, $2, $3, $4, $5)",
				r.ID, r.Name, r.FoodRelation, r.UsageCount, r.LastUsed)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadThresholds returns the stored thresholds, or nil when none were saved.
func (d *Store) LoadThresholds(ctx context.Context) (*domain.Thresholds, error) {
	var t domain.Thresholds
	err := d.sql.QueryRowContext(ctx,
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
func (d *Store) SaveThresholds(ctx context.Context, t domain.Thresholds) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO thresholds (id, glucose_min, glucose_max, systolic_min, systolic_max, diastolic_min, diastolic_max)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			glucose_min = EXCLUDED.glucose_min, glucose_max = EXCLUDED.glucose_max,
			systolic_min = EXCLUDED.systolic_min, systolic_max = EXCLUDED.systolic_max,
			diastolic_min = EXCLUDED.diastolic_min, diastolic_max = EXCLUDED.diastolic_max`,
		t.Glucose.Min, t.Glucose.Max, t.Systolic.Min, t.Systolic.Max, t.Diastolic.Min, t.Diastolic.Max)
	return err
}
