package app

import (
	"sort"
	"strings"

	"healthlog/internal/domain"
)

// DefaultSuggestionLimit caps suggestion lists when the caller passes no
// explicit limit.
const DefaultSuggestionLimit = 5

// Suggestion is one ranked medication name for autocomplete.
type Suggestion struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount"`
}

// SuggestMedications ranks medication names for a query. Matching is a
// case-insensitive substring test; an empty query matches everything.
// Ordering is usage count descending, then last used descending, then the
// records' own order so ties resolve the same way every call.
func SuggestMedications(records []domain.MedicationRecord, query string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))

	matched := make([]domain.MedicationRecord, 0, len(records))
	for _, r := range records {
		if q == "" || strings.Contains(strings.ToLower(r.Name), q) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UsageCount != matched[j].UsageCount {
			return matched[i].UsageCount > matched[j].UsageCount
		}
		return matched[i].LastUsed.After(matched[j].LastUsed)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]Suggestion, len(matched))
	for i, r := range matched {
		out[i] = Suggestion{Name: r.Name, UsageCount: r.UsageCount}
	}
	return out
}
