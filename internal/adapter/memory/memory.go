// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"sync"

	"healthlog/internal/domain"
)

// Store keeps the full record collections in memory. Collections are copied
// on both load and save so callers can never alias the store's state.
type Store struct {
	mu          sync.Mutex
	glucose     []domain.GlucoseMeasurement
	pressure    []domain.PressureMeasurement
	insulin     []domain.InsulinEntry
	medications []domain.MedicationRecord
	thresholds  *domain.Thresholds
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Ensure the interface is met.
var _ domain.Store = (*Store)(nil)

// LoadGlucose returns all stored glucose measurements.
func (s *Store) LoadGlucose(ctx context.Context) ([]domain.GlucoseMeasurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.glucose), nil
}

// SaveGlucose replaces the stored glucose collection.
func (s *Store) SaveGlucose(ctx context.Context, records []domain.GlucoseMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glucose = copySlice(records)
	return nil
}

// LoadPressure returns all stored pressure measurements.
func (s *Store) LoadPressure(ctx context.Context) ([]domain.PressureMeasurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.pressure), nil
}

// SavePressure replaces the stored pressure collection.
func (s *Store) SavePressure(ctx context.Context, records []domain.PressureMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressure = copySlice(records)
	return nil
}

// LoadInsulin returns all stored insulin entries.
func (s *Store) LoadInsulin(ctx context.Context) ([]domain.InsulinEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.insulin), nil
}

// SaveInsulin replaces the stored insulin collection.
func (s *Store) SaveInsulin(ctx context.Context, records []domain.InsulinEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insulin = copySlice(records)
	return nil
}

// LoadMedications returns all stored medication records.
func (s *Store) LoadMedications(ctx context.Context) ([]domain.MedicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.medications), nil
}

// SaveMedications replaces the stored medication collection.
func (s *Store) SaveMedications(ctx context.Context, records []domain.MedicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medications = copySlice(records)
	return nil
}

// LoadThresholds returns the stored thresholds, or nil when none were saved.
func (s *Store) LoadThresholds(ctx context.Context) (*domain.Thresholds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thresholds == nil {
		return nil, nil
	}
	t := *s.thresholds
	return &t, nil
}

// SaveThresholds replaces the stored thresholds.
func (s *Store) SaveThresholds(ctx context.Context, t domain.Thresholds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = &t
	return nil
}

func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
