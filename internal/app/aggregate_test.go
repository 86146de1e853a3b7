package app_test

import (
	"testing"
	"time"

	"healthlog/internal/app"
	"healthlog/internal/domain"
)

func TestAggregateGroupsAndOrders(t *testing.T) {
	clock := domain.NewClockAt(utcMinus3, time.Date(2025, 8, 22, 12, 0, 0, 0, utcMinus3))

	at := func(day, hhmm string) time.Time {
		ts, err := clock.Parse(day + "T" + hhmm)
		if err != nil {
			t.Fatalf("parse %s %s: %v", day, hhmm, err)
		}
		return ts
	}

	records := []domain.Record{
		domain.GlucoseMeasurement{ID: "g1", Instant: at("2025-08-20", "08:00"), Value: 95, Context: domain.GlucoseFasting, Status: domain.StatusNormal},
		domain.InsulinEntry{ID: "i1", Instant: at("2025-08-20", "21:30"), Dose: 10, Type: domain.InsulinLong, Context: domain.InsulinFasting},
		domain.PressureMeasurement{ID: "p1", Instant: at("2025-08-21", "09:15"), Systolic: 110, Diastolic: 70, Status: domain.StatusNormal},
		domain.MedicationRecord{ID: "m1", Name: "Metformina", FoodRelation: domain.FoodDuring, UsageCount: 3, LastUsed: at("2025-08-21", "13:00")},
		// A zoned instant late in UTC terms that belongs to the 21st locally.
		domain.GlucoseMeasurement{ID: "g2", Instant: time.Date(2025, 8, 22, 1, 39, 0, 0, time.UTC), Value: 110, Context: domain.GlucoseCustom, Status: domain.StatusWarning},
	}

	buckets := app.Aggregate(clock, records, "2025-08-20", "2025-08-21")
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets; want 2", len(buckets))
	}

	// Most recent day first.
	if buckets[0].Day != "2025-08-21" || buckets[1].Day != "2025-08-20" {
		t.Fatalf("bucket order = %s, %s; want 2025-08-21, 2025-08-20", buckets[0].Day, buckets[1].Day)
	}

	// Within the 21st: 22:39 local (g2), 13:00 (m1), 09:15 (p1).
	wantIDs := []string{"g2", "m1", "p1"}
	if len(buckets[0].Records) != 3 {
		t.Fatalf("21st has %d records; want 3", len(buckets[0].Records))
	}
	for i, id := range wantIDs {
		if got := buckets[0].Records[i].RecordID(); got != id {
			t.Errorf("21st position %d = %s; want %s", i, got, id)
		}
	}

	// Within the 20th: 21:30 (i1) then 08:00 (g1).
	if got := buckets[1].Records[0].RecordID(); got != "i1" {
		t.Errorf("20th first record = %s; want i1", got)
	}
}

func TestAggregateFiltersRange(t *testing.T) {
	clock := domain.NewClockAt(utcMinus3, time.Date(2025, 8, 22, 12, 0, 0, 0, utcMinus3))

	records := []domain.Record{
		domain.GlucoseMeasurement{ID: "in", Instant: time.Date(2025, 8, 21, 10, 0, 0, 0, utcMinus3)},
		domain.GlucoseMeasurement{ID: "out", Instant: time.Date(2025, 8, 19, 10, 0, 0, 0, utcMinus3)},
	}

	buckets := app.Aggregate(clock, records, "2025-08-20", "2025-08-22")
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets; want 1", len(buckets))
	}
	if buckets[0].Records[0].RecordID() != "in" {
		t.Fatal("out-of-range record leaked into a bucket")
	}
}

func TestAggregateEmpty(t *testing.T) {
	clock := domain.NewClock(nil)
	if got := app.Aggregate(clock, nil, "2025-08-01", "2025-08-31"); len(got) != 0 {
		t.Fatalf("expected no buckets, got %d", len(got))
	}
}
