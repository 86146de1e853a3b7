package app

import (
	"sort"

	"healthlog/internal/domain"
)

// DayBucket groups every record that occurred on one local calendar day.
type DayBucket struct {
	Day     string          `json:"day"`
	Records []domain.Record `json:"records"`
}

// Aggregate merges records of all kinds into day buckets for the inclusive
// [startDay, endDay] range. Buckets come back most recent day first; within
// a bucket records are ordered by local time descending. Pure function, no
// I/O; it is the read-side view over QueryByDayRange output.
func Aggregate(clock *domain.Clock, records []domain.Record, startDay, endDay string) []DayBucket {
	byDay := make(map[string][]domain.Record)
	for _, r := range records {
		key := clock.DayKey(r.RecordInstant())
		if key < startDay || key > endDay {
			continue
		}
		byDay[key] = append(byDay[key], r)
	}

	keys := make([]string, 0, len(byDay))
	for key := range byDay {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	buckets := make([]DayBucket, 0, len(keys))
	for _, key := range keys {
		entries := byDay[key]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].RecordInstant().After(entries[j].RecordInstant())
		})
		buckets = append(buckets, DayBucket{Day: key, Records: entries})
	}
	return buckets
}
