package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthlog/internal/domain"
)

var utcMinus3 = time.FixedZone("UTC-3", -3*60*60)

func testClock() *domain.Clock {
	return domain.NewClockAt(utcMinus3, time.Date(2025, 8, 22, 12, 0, 0, 0, utcMinus3))
}

func newTestStore(t *testing.T) *Store {
	store, err := NewMemoryStore(testClock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir()+"/healthlog.db", testClock())
	require.NoError(t, err)
	defer store.Close()

	assert.NotNil(t, store)
}

func TestEmptyLoads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g, err := store.LoadGlucose(ctx)
	require.NoError(t, err)
	assert.Empty(t, g)

	th, err := store.LoadThresholds(ctx)
	require.NoError(t, err)
	assert.Nil(t, th)
}

func TestGlucoseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	clock := testClock()

	instant := time.Date(2025, 8, 22, 1, 39, 0, 0, time.UTC)
	records := []domain.GlucoseMeasurement{{
		ID:      "g1",
		Instant: instant,
		Value:   95,
		Context: domain.GlucoseFasting,
		Status:  domain.StatusNormal,
	}}

	require.NoError(t, store.SaveGlucose(ctx, records))

	got, err := store.LoadGlucose(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "g1", got[0].ID)
	assert.Equal(t, 95.0, got[0].Value)
	assert.True(t, got[0].Instant.Equal(instant))

	// The local day bucket must survive the round trip: 01:39 UTC is still
	// the 21st in UTC-3.
	assert.Equal(t, "2025-08-21", clock.DayKey(got[0].Instant))
}

// Rows written by an older build carried naive local timestamps. They must
// load on their wall-clock day, not get shifted through UTC.
func TestLoadLegacyNaiveTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		"INSERT INTO glucose (id, instant, value, context, status) VALUES ('legacy', '2025-08-21T22:39', 95, 'fasting', 'normal')")
	require.NoError(t, err)

	got, err := store.LoadGlucose(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := testClock().Local(got[0].Instant)
	assert.Equal(t, "2025-08-21", m.Key())
	assert.Equal(t, 22, m.Hour)
	assert.Equal(t, 39, m.Minute)
}

func TestSaveAllReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []domain.InsulinEntry{
		{ID: "i1", Instant: time.Now(), Dose: 10, Type: domain.InsulinRapid, Context: domain.InsulinCorrection},
		{ID: "i2", Instant: time.Now(), Dose: 8, Type: domain.InsulinLong, Context: domain.InsulinFasting},
	}
	require.NoError(t, store.SaveInsulin(ctx, first))

	// A later save with one entry removed must fully replace the table.
	require.NoError(t, store.SaveInsulin(ctx, first[:1]))

	got, err := store.LoadInsulin(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestPressureRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []domain.PressureMeasurement{{
		ID:        "p1",
		Instant:   time.Date(2025, 8, 21, 9, 0, 0, 0, utcMinus3),
		Systolic:  130,
		Diastolic: 85,
		Status:    domain.StatusWarning,
	}}
	require.NoError(t, store.SavePressure(ctx, records))

	got, err := store.LoadPressure(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 130.0, got[0].Systolic)
	assert.Equal(t, 85.0, got[0].Diastolic)
	assert.Equal(t, domain.StatusWarning, got[0].Status)
}

func TestMedicationsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []domain.MedicationRecord{{
		ID:           "m1",
		Name:         "Metformina",
		FoodRelation: domain.FoodDuring,
		UsageCount:   3,
		LastUsed:     time.Date(2025, 8, 21, 13, 0, 0, 0, utcMinus3),
	}}
	require.NoError(t, store.SaveMedications(ctx, records))

	got, err := store.LoadMedications(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Metformina", got[0].Name)
	assert.Equal(t, 3, got[0].UsageCount)
	assert.Equal(t, domain.FoodDuring, got[0].FoodRelation)
}

func TestThresholdsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := domain.Thresholds{
		Glucose:   domain.Band{Min: 80, Max: 110},
		Systolic:  domain.Band{Min: 95, Max: 125},
		Diastolic: domain.Band{Min: 65, Max: 85},
	}
	require.NoError(t, store.SaveThresholds(ctx, want))

	got, err := store.LoadThresholds(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	// Saving again overwrites the single row.
	want.Glucose.Max = 120
	require.NoError(t, store.SaveThresholds(ctx, want))
	got, err = store.LoadThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Glucose.Max)
}
