package domain

import "time"

// PressureMeasurement is a single blood pressure reading in mmHg. Status is
// the worst of the independent systolic and diastolic classifications.
type PressureMeasurement struct {
	ID        string    `json:"id"`
	Instant   time.Time `json:"instant"`
	Systolic  float64   `json:"systolic"`
	Diastolic float64   `json:"diastolic"`
	Status    Status    `json:"status"`
}

func (m PressureMeasurement) RecordID() string         { return m.ID }
func (m PressureMeasurement) RecordInstant() time.Time { return m.Instant }
func (m PressureMeasurement) Kind() RecordKind         { return KindPressure }
func (PressureMeasurement) isRecord()                  {}
