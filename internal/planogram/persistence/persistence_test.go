package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrations = "../../../migrations/001_init_drafts.sql"

func sampleState(layoutID string) store.State {
	ref := models.Refrigerator{"door-1": models.Door{
		"row-1": {ID: "row-1", Capacity: 100, MaxHeight: 200, Stacks: []models.Stack{}},
	}}
	s := store.New(layoutID, ref)
	_, _ = s.AddItemFromSku(models.Sku{SkuID: "cola", Width: 30, Height: 50, ProductType: models.ProductTypeCan,
		Constraints: models.Constraints{Stackable: true, Deletable: true}}, "row-1", 0, "")
	return s.State()
}

func openRepo(t *testing.T, now func() time.Time) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db, WithClock(now))
	require.NoError(t, repo.Init(context.Background(), migrations))
	return repo
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := openRepo(t, func() time.Time { return now })
	ctx := context.Background()

	state := sampleState("layout-1")
	require.NoError(t, repo.Save(ctx, NewDraft(state, now)))

	d, err := repo.Load(ctx, "layout-1")
	require.NoError(t, err)
	assert.Equal(t, "layout-1", d.LayoutID)
	assert.Equal(t, 1, d.HistoryIndex)
	assert.Len(t, d.History, 2)
	assert.Equal(t, "2026-03-01T12:00:00Z", d.Timestamp)

	restored, err := store.Restore(d.State)
	require.NoError(t, err)
	assert.True(t, restored.CanUndo())
	assert.Len(t, restored.Snapshot().Items(), 1)
}

func TestRepository_SaveOverwrites(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := openRepo(t, func() time.Time { return now })
	ctx := context.Background()

	state := sampleState("layout-1")
	require.NoError(t, repo.Save(ctx, NewDraft(state, now)))
	state.HistoryIndex = 0
	require.NoError(t, repo.Save(ctx, NewDraft(state, now.Add(time.Minute))))

	d, err := repo.Load(ctx, "layout-1")
	require.NoError(t, err)
	assert.Equal(t, 0, d.HistoryIndex)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_ExpiredDraftIsPurgedOnLoad(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	repo := openRepo(t, func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, NewDraft(sampleState("layout-1"), now)))

	clock = now.Add(DefaultTTL + time.Minute)
	_, err := repo.Load(ctx, "layout-1")
	assert.ErrorIs(t, err, ErrNotFound)

	clock = now
	_, err = repo.Load(ctx, "layout-1")
	assert.ErrorIs(t, err, ErrNotFound, "expired draft must have been deleted")
}

func TestRepository_ListAndPurge(t *testing.T) {
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	repo := openRepo(t, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, NewDraft(sampleState("old"), now.Add(-72*time.Hour))))
	require.NoError(t, repo.Save(ctx, NewDraft(sampleState("a"), now.Add(-time.Hour))))
	require.NoError(t, repo.Save(ctx, NewDraft(sampleState("b"), now)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].LayoutID)
	assert.Equal(t, "a", list[1].LayoutID)

	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

type memSaver struct {
	mu     sync.Mutex
	drafts []Draft
	err    error
}

func (m *memSaver) Save(_ context.Context, d Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.drafts = append(m.drafts, d)
	return nil
}

func (m *memSaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

func TestAutoSaver_CoalescesBurstOfCommits(t *testing.T) {
	saver := &memSaver{}
	auto := NewAutoSaver(saver, 20*time.Millisecond, nil)

	ref := models.Refrigerator{"door-1": models.Door{
		"row-1": {ID: "row-1", Capacity: 400, MaxHeight: 200, Stacks: []models.Stack{}},
	}}
	s := store.New("layout-1", ref, auto.Hook())
	sku := models.Sku{SkuID: "cola", Width: 30, Height: 50, ProductType: models.ProductTypeCan}
	for i := 0; i < 5; i++ {
		_, err := s.AddItemFromSku(sku, "row-1", i, "")
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return saver.count() == 1 }, time.Second, 5*time.Millisecond)
	saver.mu.Lock()
	assert.Equal(t, 5, saver.drafts[0].HistoryIndex)
	saver.mu.Unlock()
}

func TestAutoSaver_FlushAndFailures(t *testing.T) {
	saver := &memSaver{err: errors.New("disk full")}
	auto := NewAutoSaver(saver, time.Hour, nil)

	auto.Schedule(sampleState("layout-1"))
	assert.True(t, auto.Pending())
	auto.Flush()
	assert.False(t, auto.Pending())

	saved, failures := auto.Stats()
	assert.Equal(t, 0, saved)
	assert.Equal(t, 1, failures)

	saver.err = nil
	auto.Schedule(sampleState("layout-1"))
	auto.Cancel()
	auto.Flush()
	assert.Equal(t, 0, saver.count())
}
