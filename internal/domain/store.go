package domain

import "context"

// Store is the port for ledger persistence. The contract is deliberately
// coarse: load the full collection of a type at startup, save the full
// collection after a mutation. LoadX on an empty or missing store returns an
// empty slice, not an error; LoadThresholds returns nil when the user has
// never saved any.
type Store interface {
	LoadGlucose(ctx context.Context) ([]GlucoseMeasurement, error)
	SaveGlucose(ctx context.Context, records []GlucoseMeasurement) error

	LoadPressure(ctx context.Context) ([]PressureMeasurement, error)
	SavePressure(ctx context.Context, records []PressureMeasurement) error

	LoadInsulin(ctx context.Context) ([]InsulinEntry, error)
	SaveInsulin(ctx context.Context, records []InsulinEntry) error

	LoadMedications(ctx context.Context) ([]MedicationRecord, error)
	SaveMedications(ctx context.Context, records []MedicationRecord) error

	LoadThresholds(ctx context.Context) (*Thresholds, error)
	SaveThresholds(ctx context.Context, t Thresholds) error
}
