// Package domain contains the core ledger entities and storage ports.
package domain

import "time"

// GlucoseContext describes when a glucose measurement was taken.
type GlucoseContext string

const (
	GlucoseFasting      GlucoseContext = "fasting"
	GlucosePostprandial GlucoseContext = "postprandial"
	GlucoseCustom       GlucoseContext = "custom"
)

// ValidGlucoseContext reports whether c is a known context.
func ValidGlucoseContext(c GlucoseContext) bool {
	switch c {
	case GlucoseFasting, GlucosePostprandial, GlucoseCustom:
		return true
	}
	return false
}

// GlucoseMeasurement is a single blood glucose reading in mg/dL. Status is
// derived from Value and the current thresholds, never set independently.
type GlucoseMeasurement struct {
	ID      string         `json:"id"`
	Instant time.Time      `json:"instant"`
	Value   float64        `json:"value"`
	Context GlucoseContext `json:"context"`
	Status  Status         `json:"status"`
}

func (m GlucoseMeasurement) RecordID() string         { return m.ID }
func (m GlucoseMeasurement) RecordInstant() time.Time { return m.Instant }
func (m GlucoseMeasurement) Kind() RecordKind         { return KindGlucose }
func (GlucoseMeasurement) isRecord()                  {}
