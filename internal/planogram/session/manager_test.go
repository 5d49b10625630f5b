package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/store"
	"planogram-editor/internal/planogram/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSaver struct {
	mu     sync.Mutex
	drafts map[string]persistence.Draft
}

func (m *memSaver) Save(_ context.Context, d persistence.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.LayoutID] = d
	return nil
}

func layout() models.Refrigerator {
	return models.Refrigerator{"door-1": models.Door{
		"row-1": {ID: "row-1", Capacity: 100, MaxHeight: 200, Stacks: []models.Stack{}},
	}}
}

var cola = models.Sku{SkuID: "cola", Width: 30, Height: 50, ProductType: models.ProductTypeCan,
	Constraints: models.Constraints{Stackable: true, Deletable: true}}

func newManager(saver persistence.Saver) *Manager {
	return NewManager(Config{
		Policy:           validation.DefaultPolicy(),
		RulesEnabled:     true,
		DragThrottle:     interaction.DefaultThrottle,
		AutosaveDebounce: time.Hour,
		Saver:            saver,
	})
}

func TestManager_OpenGetClose(t *testing.T) {
	m := newManager(nil)
	sess := m.Open("layout-1", layout())
	require.NotEmpty(t, sess.ID)

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Close(sess.ID))
	assert.False(t, m.Close(sess.ID))
	_, ok = m.Get(sess.ID)
	assert.False(t, ok)
}

func TestManager_ShutdownFlushesDrafts(t *testing.T) {
	saver := &memSaver{drafts: map[string]persistence.Draft{}}
	m := newManager(saver)
	sess := m.Open("layout-1", layout())

	err := sess.Do(func(st *store.Store, _ *interaction.Controller) error {
		_, err := st.AddItemFromSku(cola, "row-1", 0, "")
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, saver.drafts)

	m.Shutdown()
	require.Contains(t, saver.drafts, "layout-1")
	assert.Equal(t, 1, saver.drafts["layout-1"].HistoryIndex)
}

func TestManager_RestoreFromDraft(t *testing.T) {
	m := newManager(nil)
	st := store.New("layout-1", layout())
	_, err := st.AddItemFromSku(cola, "row-1", 0, "")
	require.NoError(t, err)

	sess, err := m.Restore(persistence.NewDraft(st.State(), time.Now()))
	require.NoError(t, err)

	_ = sess.Do(func(st *store.Store, _ *interaction.Controller) error {
		assert.True(t, st.CanUndo())
		assert.Len(t, st.Snapshot().Items(), 1)
		return nil
	})
}

func TestManager_RestoreRejectsCorruptDraft(t *testing.T) {
	m := newManager(nil)
	_, err := m.Restore(persistence.Draft{State: store.State{LayoutID: "x", History: []models.Refrigerator{layout()}, HistoryIndex: 3}})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestSession_DiscardDraftCancelsPendingSave(t *testing.T) {
	saver := &memSaver{drafts: map[string]persistence.Draft{}}
	m := newManager(saver)
	sess := m.Open("layout-1", layout())
	_ = sess.Do(func(st *store.Store, _ *interaction.Controller) error {
		_, err := st.AddItemFromSku(cola, "row-1", 0, "")
		return err
	})

	sess.DiscardDraft()
	m.Shutdown()
	assert.Empty(t, saver.drafts)
}

func TestManager_OpenExpiresIdleSessions(t *testing.T) {
	saver := &memSaver{drafts: map[string]persistence.Draft{}}
	m := NewManager(Config{
		Policy:           validation.DefaultPolicy(),
		AutosaveDebounce: time.Hour,
		IdleTimeout:      time.Minute,
		Saver:            saver,
	})
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	stale := m.Open("layout-1", layout())
	active := m.Open("layout-2", layout())
	err := stale.Do(func(st *store.Store, _ *interaction.Controller) error {
		_, err := st.AddItemFromSku(cola, "row-1", 0, "")
		return err
	})
	require.NoError(t, err)

	clock = clock.Add(50 * time.Second)
	_, ok := m.Get(active.ID)
	require.True(t, ok)

	clock = clock.Add(20 * time.Second)
	fresh := m.Open("layout-3", layout())

	_, ok = m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
	require.Contains(t, saver.drafts, "layout-1")
}

func TestManager_ZeroIdleTimeoutKeepsSessions(t *testing.T) {
	m := newManager(nil)
	clock := time.Now()
	m.now = func() time.Time { return clock }

	sess := m.Open("layout-1", layout())
	clock = clock.Add(24 * time.Hour)
	m.Open("layout-2", layout())

	_, ok := m.Get(sess.ID)
	assert.True(t, ok)
}
