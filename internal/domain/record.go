package domain

import "time"

// RecordKind discriminates the record variants.
type RecordKind string

const (
	KindGlucose    RecordKind = "glucose"
	KindPressure   RecordKind = "pressure"
	KindInsulin    RecordKind = "insulin"
	KindMedication RecordKind = "medication"
)

// Record is the closed set of ledger record variants. Only the four
// concrete types in this package implement it; consumers switch over the
// variants rather than inspecting runtime tags.
type Record interface {
	RecordID() string
	RecordInstant() time.Time
	Kind() RecordKind
	isRecord()
}
