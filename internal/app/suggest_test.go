package app_test

import (
	"testing"
	"time"

	"healthlog/internal/app"
	"healthlog/internal/domain"
)

func med(name string, count int, lastUsed time.Time) domain.MedicationRecord {
	return domain.MedicationRecord{
		ID:           name,
		Name:         name,
		FoodRelation: domain.FoodNone,
		UsageCount:   count,
		LastUsed:     lastUsed,
	}
}

func TestSuggestMedicationsRanking(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	records := []domain.MedicationRecord{
		med("Aspirina", 1, base),
		med("Metformina", 4, base.Add(-time.Hour)),
		med("Enalapril", 4, base.Add(time.Hour)),
		med("Zinc", 2, base),
	}

	got := app.SuggestMedications(records, "", 5)
	want := []string{"Enalapril", "Metformina", "Zinc", "Aspirina"}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions; want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d = %q; want %q", i, got[i].Name, name)
		}
	}
}

// Usage count beats alphabetical order.
func TestSuggestMedicationsFrequencyOverAlphabet(t *testing.T) {
	base := time.Now()
	records := []domain.MedicationRecord{
		med("Aaa", 1, base),
		med("Metformina", 2, base),
	}
	got := app.SuggestMedications(records, "", 5)
	if got[0].Name != "Metformina" {
		t.Fatalf("top suggestion = %q; want the more used name", got[0].Name)
	}
}

func TestSuggestMedicationsSubstringMatch(t *testing.T) {
	base := time.Now()
	records := []domain.MedicationRecord{
		med("Metformina", 3, base),
		med("Enalapril", 5, base),
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"met", []string{"Metformina"}},
		{"FORM", []string{"Metformina"}},
		{"a", []string{"Enalapril", "Metformina"}},
		{"xyz", nil},
	}
	for _, tc := range tests {
		got := app.SuggestMedications(records, tc.query, 5)
		if len(got) != len(tc.want) {
			t.Errorf("query %q: got %d results; want %d", tc.query, len(got), len(tc.want))
			continue
		}
		for i, name := range tc.want {
			if got[i].Name != name {
				t.Errorf("query %q position %d = %q; want %q", tc.query, i, got[i].Name, name)
			}
		}
	}
}

func TestSuggestMedicationsLimit(t *testing.T) {
	base := time.Now()
	var records []domain.MedicationRecord
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		records = append(records, med(name, 1, base))
	}

	if got := app.SuggestMedications(records, "", 3); len(got) != 3 {
		t.Fatalf("limit 3: got %d", len(got))
	}
	// A non-positive limit falls back to the default of 5.
	if got := app.SuggestMedications(records, "", 0); len(got) != app.DefaultSuggestionLimit {
		t.Fatalf("default limit: got %d", len(got))
	}
}

// Equal count and equal recency must resolve by insertion order, every call.
func TestSuggestMedicationsStableTies(t *testing.T) {
	base := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	records := []domain.MedicationRecord{
		med("Zeta", 2, base),
		med("Alfa", 2, base),
	}
	for i := 0; i < 10; i++ {
		got := app.SuggestMedications(records, "", 5)
		if got[0].Name != "Zeta" || got[1].Name != "Alfa" {
			t.Fatalf("iteration %d: order changed: %v", i, got)
		}
	}
}
