package domain

import (
	"strings"
	"time"
)

// FoodRelation describes when a medication is taken relative to meals.
type FoodRelation string

const (
	FoodBefore FoodRelation = "before"
	FoodDuring FoodRelation = "during"
	FoodAfter  FoodRelation = "after"
	FoodNone   FoodRelation = "none"
)

// ValidFoodRelation reports whether r is a known relation.
func ValidFoodRelation(r FoodRelation) bool {
	switch r {
	case FoodBefore, FoodDuring, FoodAfter, FoodNone:
		return true
	}
	return false
}

// MedicationRecord is a rolled-up counter of intakes of one medication.
// Name keeps the display form the user first typed; uniqueness is by
// case-insensitive name equality. A repeat intake increments UsageCount and
// moves LastUsed instead of creating a second record.
type MedicationRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	FoodRelation FoodRelation `json:"foodRelation"`
	UsageCount   int          `json:"usageCount"`
	LastUsed     time.Time    `json:"lastUsed"`
}

// SameName reports whether name matches the record case-insensitively.
func (r MedicationRecord) SameName(name string) bool {
	return strings.EqualFold(r.Name, name)
}

func (r MedicationRecord) RecordID() string         { return r.ID }
func (r MedicationRecord) RecordInstant() time.Time { return r.LastUsed }
func (r MedicationRecord) Kind() RecordKind         { return KindMedication }
func (MedicationRecord) isRecord()                  {}
