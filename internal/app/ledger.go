// Package app contains the ledger use cases over the domain entities.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthlog/internal/domain"
)

var (
	// ErrNotFound indicates that an edit or delete referenced an unknown record id.
	ErrNotFound = errors.New("record not found")
)

// InvalidInputError describes a rejected mutation. Nothing is changed in
// memory or in the store when one is returned.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// Hard input limits. Values outside these are data-entry mistakes, not
// measurements.
const (
	maxGlucose  = 1000 // mg/dL
	maxPressure = 400  // mmHg
	maxDose     = 200  // units
)

// Ledger owns the measurement and medication collections for the single
// user. All mutations are serialized: one mutation completes, including its
// synchronous save to the store, before the next is accepted. Reads reflect
// the most recently completed mutation.
type Ledger struct {
	mu    sync.Mutex
	store domain.Store
	clock *domain.Clock

	thresholds  domain.Thresholds
	glucose     []domain.GlucoseMeasurement
	pressure    []domain.PressureMeasurement
	insulin     []domain.InsulinEntry
	medications []domain.MedicationRecord

	days map[string][]domain.Record
}

// Open rehydrates a Ledger by replaying the full record collections from the
// store. Statuses are recomputed against the loaded thresholds so that data
// at rest can never disagree with the classification rules.
func Open(ctx context.Context, store domain.Store, clock *domain.Clock) (*Ledger, error) {
	if clock == nil {
		clock = domain.NewClock(nil)
	}
	l := &Ledger{store: store, clock: clock, thresholds: domain.DefaultThresholds()}

	th, err := store.LoadThresholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	if th != nil {
		l.thresholds = *th
	}

	if l.glucose, err = store.LoadGlucose(ctx); err != nil {
		return nil, fmt.Errorf("load glucose: %w", err)
	}
	if l.pressure, err = store.LoadPressure(ctx); err != nil {
		return nil, fmt.Errorf("load pressure: %w", err)
	}
	if l.insulin, err = store.LoadInsulin(ctx); err != nil {
		return nil, fmt.Errorf("load insulin: %w", err)
	}
	if l.medications, err = store.LoadMedications(ctx); err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}

	l.reclassify()
	l.rebuildDayIndex()
	return l, nil
}

// Clock returns the clock all of the ledger's timestamps route through.
func (l *Ledger) Clock() *domain.Clock {
	return l.clock
}

// Thresholds returns the current threshold bands.
func (l *Ledger) Thresholds() domain.Thresholds {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholds
}

// UpdateThresholds replaces the user's threshold bands, reclassifies every
// stored measurement against them and persists the affected collections.
func (l *Ledger) UpdateThresholds(ctx context.Context, t domain.Thresholds) error {
	for _, b := range []struct {
		name string
		band domain.Band
	}{
		{"glucose band", t.Glucose},
		{"systolic band", t.Systolic},
		{"diastolic band", t.Diastolic},
	} {
		if b.band.Min < 0 || b.band.Min >= b.band.Max {
			return invalidInput(b.name, "must satisfy 0 <= min < max")
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.thresholds = t
	l.reclassify()

	if err := l.store.SaveThresholds(ctx, t); err != nil {
		return fmt.Errorf("persist thresholds: %w", err)
	}
	if err := l.store.SaveGlucose(ctx, l.glucose); err != nil {
		return fmt.Errorf("persist glucose: %w", err)
	}
	if err := l.store.SavePressure(ctx, l.pressure); err != nil {
		return fmt.Errorf("persist pressure: %w", err)
	}
	return nil
}

// --- Adders ---

// AddGlucose validates, classifies and stores a glucose measurement.
// instant is an optional timestamp string; empty means now.
func (l *Ledger) AddGlucose(ctx context.Context, value float64, gctx domain.GlucoseContext, instant string) (domain.GlucoseMeasurement, error) {
	if err := validPositive("value", value, maxGlucose); err != nil {
		return domain.GlucoseMeasurement{}, err
	}
	if !domain.ValidGlucoseContext(gctx) {
		return domain.GlucoseMeasurement{}, invalidInput("context", "must be fasting, postprandial or custom")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m := domain.GlucoseMeasurement{
		ID:      uuid.NewString(),
		Instant: l.instantOrNow(instant),
		Value:   value,
		Context: gctx,
		Status:  l.thresholds.Glucose.Classify(value),
	}
	l.glucose = append(l.glucose, m)
	l.rebuildDayIndex()

	if err := l.store.SaveGlucose(ctx, l.glucose); err != nil {
		return m, fmt.Errorf("persist glucose: %w", err)
	}
	return m, nil
}

// AddPressure validates, classifies and stores a blood pressure measurement.
func (l *Ledger) AddPressure(ctx context.Context, systolic, diastolic float64, instant string) (domain.PressureMeasurement, error) {
	if err := validPositive("systolic", systolic, maxPressure); err != nil {
		return domain.PressureMeasurement{}, err
	}
	if err := validPositive("diastolic", diastolic, maxPressure); err != nil {
		return domain.PressureMeasurement{}, err
	}
	if systolic < diastolic {
		return domain.PressureMeasurement{}, invalidInput("systolic", "must be >= diastolic")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m := domain.PressureMeasurement{
		ID:        uuid.NewString(),
		Instant:   l.instantOrNow(instant),
		Systolic:  systolic,
		Diastolic: diastolic,
		Status:    l.thresholds.ClassifyPressure(systolic, diastolic),
	}
	l.pressure = append(l.pressure, m)
	l.rebuildDayIndex()

	if err := l.store.SavePressure(ctx, l.pressure); err != nil {
		return m, fmt.Errorf("persist pressure: %w", err)
	}
	return m, nil
}

// AddInsulin validates and stores an insulin dose entry.
func (l *Ledger) AddInsulin(ctx context.Context, dose float64, typ domain.InsulinType, ictx domain.InsulinContext, notes, instant string) (domain.InsulinEntry, error) {
	if err := validPositive("dose", dose, maxDose); err != nil {
		return domain.InsulinEntry{}, err
	}
	if !domain.ValidInsulinType(typ) {
		return domain.InsulinEntry{}, invalidInput("type", "must be rapid, long or mixed")
	}
	if !domain.ValidInsulinContext(ictx) {
		return domain.InsulinEntry{}, invalidInput("context", "must be fasting, postprandial or correction")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := domain.InsulinEntry{
		ID:      uuid.NewString(),
		Instant: l.instantOrNow(instant),
		Dose:    dose,
		Type:    typ,
		Context: ictx,
		Notes:   notes,
	}
	l.insulin = append(l.insulin, e)
	l.rebuildDayIndex()

	if err := l.store.SaveInsulin(ctx, l.insulin); err != nil {
		return e, fmt.Errorf("persist insulin: %w", err)
	}
	return e, nil
}

// AddMedicationIntake records one intake of a medication. A case-insensitive
// name match increments the existing record's usage count and moves its last
// used instant; otherwise a new record starts at a count of one.
func (l *Ledger) AddMedicationIntake(ctx context.Context, name string, rel domain.FoodRelation, instant string) (domain.MedicationRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.MedicationRecord{}, invalidInput("name", "must not be blank")
	}
	if !domain.ValidFoodRelation(rel) {
		return domain.MedicationRecord{}, invalidInput("foodRelation", "must be before, during, after or none")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.instantOrNow(instant)

	var rec domain.MedicationRecord
	found := false
	for i := range l.medications {
		if l.medications[i].SameName(name) {
			l.medications[i].UsageCount++
			l.medications[i].LastUsed = at
			l.medications[i].FoodRelation = rel
			rec = l.medications[i]
			found = true
			break
		}
	}
	if !found {
		rec = domain.MedicationRecord{
			ID:           uuid.NewString(),
			Name:         name,
			FoodRelation: rel,
			UsageCount:   1,
			LastUsed:     at,
		}
		l.medications = append(l.medications, rec)
	}
	l.rebuildDayIndex()

	if err := l.store.SaveMedications(ctx, l.medications); err != nil {
		return rec, fmt.Errorf("persist medications: %w", err)
	}
	return rec, nil
}

// --- Editors ---

// GlucosePatch carries the fields an EditGlucose call may change. Nil fields
// are left untouched; a nil Instant keeps the record on its original moment.
type GlucosePatch struct {
	Value   *float64
	Context *domain.GlucoseContext
	Instant *string
}

// EditGlucose applies a patch to the glucose measurement with the given id,
// recomputing the status when the value changes.
func (l *Ledger) EditGlucose(ctx context.Context, id string, p GlucosePatch) (domain.GlucoseMeasurement, error) {
	if p.Value != nil {
		if err := validPositive("value", *p.Value, maxGlucose); err != nil {
			return domain.GlucoseMeasurement{}, err
		}
	}
	if p.Context != nil && !domain.ValidGlucoseContext(*p.Context) {
		return domain.GlucoseMeasurement{}, invalidInput("context", "must be fasting, postprandial or custom")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.glucose, id, func(m domain.GlucoseMeasurement) string { return m.ID })
	if i < 0 {
		return domain.GlucoseMeasurement{}, ErrNotFound
	}
	m := &l.glucose[i]
	if p.Value != nil {
		m.Value = *p.Value
		m.Status = l.thresholds.Glucose.Classify(m.Value)
	}
	if p.Context != nil {
		m.Context = *p.Context
	}
	if p.Instant != nil {
		m.Instant = l.instantOrNow(*p.Instant)
	}
	l.rebuildDayIndex()

	if err := l.store.SaveGlucose(ctx, l.glucose); err != nil {
		return *m, fmt.Errorf("persist glucose: %w", err)
	}
	return *m, nil
}

// PressurePatch carries the fields an EditPressure call may change.
type PressurePatch struct {
	Systolic  *float64
	Diastolic *float64
	Instant   *string
}

// EditPressure applies a patch to the pressure measurement with the given
// id, recomputing the combined status when either value changes.
func (l *Ledger) EditPressure(ctx context.Context, id string, p PressurePatch) (domain.PressureMeasurement, error) {
	if p.Systolic != nil {
		if err := validPositive("systolic", *p.Systolic, maxPressure); err != nil {
			return domain.PressureMeasurement{}, err
		}
	}
	if p.Diastolic != nil {
		if err := validPositive("diastolic", *p.Diastolic, maxPressure); err != nil {
			return domain.PressureMeasurement{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.pressure, id, func(m domain.PressureMeasurement) string { return m.ID })
	if i < 0 {
		return domain.PressureMeasurement{}, ErrNotFound
	}
	m := &l.pressure[i]

	sys, dia := m.Systolic, m.Diastolic
	if p.Systolic != nil {
		sys = *p.Systolic
	}
	if p.Diastolic != nil {
		dia = *p.Diastolic
	}
	if sys < dia {
		return domain.PressureMeasurement{}, invalidInput("systolic", "must be >= diastolic")
	}

	if p.Systolic != nil || p.Diastolic != nil {
		m.Systolic, m.Diastolic = sys, dia
		m.Status = l.thresholds.ClassifyPressure(sys, dia)
	}
	if p.Instant != nil {
		m.Instant = l.instantOrNow(*p.Instant)
	}
	l.rebuildDayIndex()

	if err := l.store.SavePressure(ctx, l.pressure); err != nil {
		return *m, fmt.Errorf("persist pressure: %w", err)
	}
	return *m, nil
}

// InsulinPatch carries the fields an EditInsulin call may change.
type InsulinPatch struct {
	Dose    *float64
	Type    *domain.InsulinType
	Context *domain.InsulinContext
	Notes   *string
	Instant *string
}

// EditInsulin applies a patch to the insulin entry with the given id.
func (l *Ledger) EditInsulin(ctx context.Context, id string, p InsulinPatch) (domain.InsulinEntry, error) {
	if p.Dose != nil {
		if err := validPositive("dose", *p.Dose, maxDose); err != nil {
			return domain.InsulinEntry{}, err
		}
	}
	if p.Type != nil && !domain.ValidInsulinType(*p.Type) {
		return domain.InsulinEntry{}, invalidInput("type", "must be rapid, long or mixed")
	}
	if p.Context != nil && !domain.ValidInsulinContext(*p.Context) {
		return domain.InsulinEntry{}, invalidInput("context", "must be fasting, postprandial or correction")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.insulin, id, func(e domain.InsulinEntry) string { return e.ID })
	if i < 0 {
		return domain.InsulinEntry{}, ErrNotFound
	}
	e := &l.insulin[i]
	if p.Dose != nil {
		e.Dose = *p.Dose
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Context != nil {
		e.Context = *p.Context
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Instant != nil {
		e.Instant = l.instantOrNow(*p.Instant)
	}
	l.rebuildDayIndex()

	if err := l.store.SaveInsulin(ctx, l.insulin); err != nil {
		return *e, fmt.Errorf("persist insulin: %w", err)
	}
	return *e, nil
}

// MedicationPatch carries the fields an EditMedication call may change.
type MedicationPatch struct {
	Name         *string
	FoodRelation *domain.FoodRelation
	Instant      *string
}

// EditMedication applies a patch to the medication record with the given id.
// Renaming onto an existing medication's name (case-insensitively) is
// rejected, since names are the uniqueness key.
func (l *Ledger) EditMedication(ctx context.Context, id string, p MedicationPatch) (domain.MedicationRecord, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.MedicationRecord{}, invalidInput("name", "must not be blank")
	}
	if p.FoodRelation != nil && !domain.ValidFoodRelation(*p.FoodRelation) {
		return domain.MedicationRecord{}, invalidInput("foodRelation", "must be before, during, after or none")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.medications, id, func(r domain.MedicationRecord) string { return r.ID })
	if i < 0 {
		return domain.MedicationRecord{}, ErrNotFound
	}
	r := &l.medications[i]
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		for j := range l.medications {
			if j != i && l.medications[j].SameName(name) {
				return domain.MedicationRecord{}, invalidInput("name", "already used by another medication")
			}
		}
		r.Name = name
	}
	if p.FoodRelation != nil {
		r.FoodRelation = *p.FoodRelation
	}
	if p.Instant != nil {
		r.LastUsed = l.instantOrNow(*p.Instant)
	}
	l.rebuildDayIndex()

	if err := l.store.SaveMedications(ctx, l.medications); err != nil {
		return *r, fmt.Errorf("persist medications: %w", err)
	}
	return *r, nil
}

// --- Deleters ---

// DeleteGlucose removes the glucose measurement with the given id.
func (l *Ledger) DeleteGlucose(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.glucose, id, func(m domain.GlucoseMeasurement) string { return m.ID })
	if i < 0 {
		return ErrNotFound
	}
	l.glucose = append(l.glucose[:i], l.glucose[i+1:]...)
	l.rebuildDayIndex()

	if err := l.store.SaveGlucose(ctx, l.glucose); err != nil {
		return fmt.Errorf("persist glucose: %w", err)
	}
	return nil
}

// DeletePressure removes the pressure measurement with the given id.
func (l *Ledger) DeletePressure(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.pressure, id, func(m domain.PressureMeasurement) string { return m.ID })
	if i < 0 {
		return ErrNotFound
	}
	l.pressure = append(l.pressure[:i], l.pressure[i+1:]...)
	l.rebuildDayIndex()

	if err := l.store.SavePressure(ctx, l.pressure); err != nil {
		return fmt.Errorf("persist pressure: %w", err)
	}
	return nil
}

// DeleteInsulin removes the insulin entry with the given id.
func (l *Ledger) DeleteInsulin(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.insulin, id, func(e domain.InsulinEntry) string { return e.ID })
	if i < 0 {
		return ErrNotFound
	}
	l.insulin = append(l.insulin[:i], l.insulin[i+1:]...)
	l.rebuildDayIndex()

	if err := l.store.SaveInsulin(ctx, l.insulin); err != nil {
		return fmt.Errorf("persist insulin: %w", err)
	}
	return nil
}

// DeleteMedication removes the medication record with the given id along
// with its usage history.
func (l *Ledger) DeleteMedication(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.medications, id, func(r domain.MedicationRecord) string { return r.ID })
	if i < 0 {
		return ErrNotFound
	}
	l.medications = append(l.medications[:i], l.medications[i+1:]...)
	l.rebuildDayIndex()

	if err := l.store.SaveMedications(ctx, l.medications); err != nil {
		return fmt.Errorf("persist medications: %w", err)
	}
	return nil
}

// --- Queries ---

// QueryByDayRange returns every record whose local calendar day falls within
// the inclusive [startDay, endDay] range. Comparison is by day key, never by
// instant magnitude. Records come back most recent day first, most recent
// local time first within a day.
func (l *Ledger) QueryByDayRange(startDay, endDay string) ([]domain.Record, error) {
	if !domain.ValidDayKey(startDay) {
		return nil, invalidInput("startDay", "must be a YYYY-MM-DD day key")
	}
	if !domain.ValidDayKey(endDay) {
		return nil, invalidInput("endDay", "must be a YYYY-MM-DD day key")
	}
	if startDay > endDay {
		return nil, invalidInput("startDay", "must not be after endDay")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var keys []string
	for key := range l.days {
		if key >= startDay && key <= endDay {
			keys = append(keys, key)
		}
	}
	sortDesc(keys)

	var out []domain.Record
	for _, key := range keys {
		out = append(out, l.days[key]...)
	}
	return out, nil
}

// Suggest returns medication name suggestions for an autocomplete query.
func (l *Ledger) Suggest(query string, limit int) []Suggestion {
	l.mu.Lock()
	records := make([]domain.MedicationRecord, len(l.medications))
	copy(records, l.medications)
	l.mu.Unlock()

	return SuggestMedications(records, query, limit)
}

// Medications returns a copy of all medication records.
func (l *Ledger) Medications() []domain.MedicationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.MedicationRecord, len(l.medications))
	copy(out, l.medications)
	return out
}

// --- internals ---

// instantOrNow resolves an optional caller-supplied timestamp. Callers hold l.mu.
func (l *Ledger) instantOrNow(instant string) time.Time {
	if instant == "" {
		return l.clock.Now()
	}
	return l.clock.ParseOrNow(instant)
}

// reclassify recomputes every derived status from the current thresholds.
func (l *Ledger) reclassify() {
	for i := range l.glucose {
		l.glucose[i].Status = l.thresholds.Glucose.Classify(l.glucose[i].Value)
	}
	for i := range l.pressure {
		l.pressure[i].Status = l.thresholds.ClassifyPressure(l.pressure[i].Systolic, l.pressure[i].Diastolic)
	}
}

// rebuildDayIndex regroups every record under its local calendar day key,
// entries ordered by local time descending within a day.
func (l *Ledger) rebuildDayIndex() {
	days := make(map[string][]domain.Record)
	add := func(r domain.Record) {
		key := l.clock.DayKey(r.RecordInstant())
		days[key] = append(days[key], r)
	}
	for _, m := range l.glucose {
		add(m)
	}
	for _, m := range l.pressure {
		add(m)
	}
	for _, e := range l.insulin {
		add(e)
	}
	for _, r := range l.medications {
		add(r)
	}
	for key := range days {
		bucket := days[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].RecordInstant().After(bucket[j].RecordInstant())
		})
	}
	l.days = days
}

func validPositive(field string, v, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidInput(field, "must be a finite number")
	}
	if v <= 0 {
		return invalidInput(field, "must be > 0")
	}
	if v > max {
		return invalidInput(field, fmt.Sprintf("must be <= %v", max))
	}
	return nil
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i := range items {
		if idOf(items[i]) == id {
			return i
		}
	}
	return -1
}

func sortDesc(keys []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
}
