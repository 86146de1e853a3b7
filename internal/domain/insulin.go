package domain

import "time"

// InsulinType is the kind of insulin administered.
type InsulinType string

const (
	InsulinRapid InsulinType = "rapid"
	InsulinLong  InsulinType = "long"
	InsulinMixed InsulinType = "mixed"
)

// ValidInsulinType reports whether t is a known insulin type.
func ValidInsulinType(t InsulinType) bool {
	switch t {
	case InsulinRapid, InsulinLong, InsulinMixed:
		return true
	}
	return false
}

// InsulinContext describes why a dose was administered.
type InsulinContext string

const (
	InsulinFasting      InsulinContext = "fasting"
	InsulinPostprandial InsulinContext = "postprandial"
	InsulinCorrection   InsulinContext = "correction"
)

// ValidInsulinContext reports whether c is a known context.
func ValidInsulinContext(c InsulinContext) bool {
	switch c {
	case InsulinFasting, InsulinPostprandial, InsulinCorrection:
		return true
	}
	return false
}

// InsulinEntry is a single insulin dose in units. Insulin has no
// normal/critical banding, so there is no status field.
type InsulinEntry struct {
	ID      string         `json:"id"`
	Instant time.Time      `json:"instant"`
	Dose    float64        `json:"dose"`
	Type    InsulinType    `json:"type"`
	Context InsulinContext `json:"context"`
	Notes   string         `json:"notes,omitempty"`
}

func (e InsulinEntry) RecordID() string         { return e.ID }
func (e InsulinEntry) RecordInstant() time.Time { return e.Instant }
func (e InsulinEntry) Kind() RecordKind         { return KindInsulin }
func (InsulinEntry) isRecord()                  {}
