package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"pm-dashboard-api/internal/localstore"
	"pm-dashboard-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RecordStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := localstore.NewFileStore(path)
	require.NoError(t, err)
	s := New(kv)
	s.ReplaceAll(context.Background(), nil) // start empty, not seeded
	return s, path
}

func TestCreateRequiresID(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Create(context.Background(), models.PMRecord{Device: models.DeviceComputer})
	assert.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, 0, s.Len(), "rejected save must not mutate")
}

func TestCreateThenStats(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(context.Background(), models.PMRecord{
		ID:     "PM-100",
		Device: models.DevicePrinter,
		Status: models.StatusPending,
	}))
	assert.Equal(t, 1, s.Len())
	rec, ok := s.Get("PM-100")
	require.True(t, ok)
	assert.Equal(t, models.DevicePrinter, rec.Device)
}

func TestCreateUpsertsOnIDCollision(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1", Personnel: "Alice"}))
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-2", Personnel: "Bob"}))
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1", Personnel: "Carol"}))

	assert.Equal(t, 2, s.Len())
	snapshot := s.Snapshot()
	assert.Equal(t, "PM-1", snapshot[0].ID, "upsert keeps position")
	assert.Equal(t, "Carol", snapshot[0].Personnel)
}

func TestDeviceFixedAtCreation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1", Device: models.DeviceComputer}))

	err := s.Create(ctx, models.PMRecord{ID: "PM-1", Device: models.DevicePrinter})
	assert.ErrorIs(t, err, ErrDeviceChanged, "upsert must not flip the category")

	err = s.Update(ctx, models.PMRecord{ID: "PM-1", Device: models.DevicePrinter})
	assert.ErrorIs(t, err, ErrDeviceChanged)

	rec, ok := s.Get("PM-1")
	require.True(t, ok)
	assert.Equal(t, models.DeviceComputer, rec.Device, "rejected save must not mutate")
}

func TestCreateRecomputesNextDateOnCompleted(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(context.Background(), models.PMRecord{
		ID:     "PM-1",
		Date:   "2025-01-15",
		Device: models.DeviceComputer,
		Status: models.StatusCompleted,
	}))
	rec, _ := s.Get("PM-1")
	assert.Equal(t, "2025-07-14", rec.NextPMDate)
}

func TestCreateThenDeleteRestoresPriorState(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1"}))
	before := s.Snapshot()

	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-2"}))
	s.Delete(ctx, "PM-2")

	assert.Equal(t, before, s.Snapshot())
}

func TestUpdatePreservesCountAndPosition(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, s.Create(ctx, models.PMRecord{ID: id}))
	}

	require.NoError(t, s.Update(ctx, models.PMRecord{ID: "B", Personnel: "Tech"}))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{snapshot[0].ID, snapshot[1].ID, snapshot[2].ID})
	assert.Equal(t, "Tech", snapshot[1].Personnel)
}

func TestUpdateUnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Update(context.Background(), models.PMRecord{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(context.Background(), models.PMRecord{ID: "PM-1"}))
	s.Delete(context.Background(), "ghost")
	assert.Equal(t, 1, s.Len())
}

func TestReplaceAllDropsMalformedEntries(t *testing.T) {
	s, _ := newTestStore(t)

	// A sheet response with a null row, as the remote endpoint produces.
	var fetched []models.PMRecord
	require.NoError(t, json.Unmarshal([]byte(`[null, {"id":"PM-9","device":"Printer"}]`), &fetched))

	s.ReplaceAll(context.Background(), fetched)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("PM-9")
	assert.True(t, ok)
}

func TestReplaceAllDiscardsLocalState(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "local-1"}))

	s.ReplaceAll(ctx, []models.PMRecord{{ID: "remote-1"}})
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("local-1")
	assert.False(t, ok)
}

func TestWriteThroughSurvivesReopen(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1", Department: "IT / ไอที"}))

	kv, err := localstore.NewFileStore(path)
	require.NoError(t, err)
	reopened := New(kv)
	require.NoError(t, reopened.Hydrate(ctx))

	rec, ok := reopened.Get("PM-1")
	require.True(t, ok)
	assert.Equal(t, "IT / ไอที", rec.Department)
}

func TestHydrateEmptyStoreSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := localstore.NewFileStore(path)
	require.NoError(t, err)

	s := New(kv)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Equal(t, len(models.SeedRecords()), s.Len())
}

func TestHydrateMalformedPayloadSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := localstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), localstore.KeyRecords, "{broken"))

	s := New(kv)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Equal(t, len(models.SeedRecords()), s.Len(), "corrupt payload recovers to seed data")
}

func TestPushHookFiresForSavesOnly(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var pushed []string
	s.SetPushHook(func(rec models.PMRecord) { pushed = append(pushed, rec.ID) })

	require.NoError(t, s.Create(ctx, models.PMRecord{ID: "PM-1"}))
	require.NoError(t, s.Update(ctx, models.PMRecord{ID: "PM-1", Personnel: "Tech"}))
	s.Delete(ctx, "PM-1")
	s.ReplaceAll(ctx, []models.PMRecord{{ID: "PM-2"}})

	assert.Equal(t, []string{"PM-1", "PM-1"}, pushed)
}
