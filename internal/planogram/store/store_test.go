package store

import (
	"errors"
	"fmt"
	"testing"

	"planogram-editor/internal/planogram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func canSku(id string, w, h float64) models.Sku {
	return models.Sku{SkuID: id, Name: id, Width: w, Height: h, ProductType: models.ProductTypeCan,
		Constraints: models.Constraints{Stackable: true, Deletable: true}}
}

func singleRow(capacity, maxHeight float64, allowed models.AllowedTypes) models.Refrigerator {
	return models.Refrigerator{"door-1": models.Door{
		"row-1": {ID: "row-1", Capacity: capacity, MaxHeight: maxHeight, AllowedProductTypes: allowed, Stacks: []models.Stack{}},
	}}
}

func twoDoors() models.Refrigerator {
	return models.Refrigerator{
		"door-1": models.Door{
			"row-1": {ID: "row-1", Capacity: 100, MaxHeight: 200, Stacks: []models.Stack{}},
			"row-2": {ID: "row-2", Capacity: 100, MaxHeight: 150, Stacks: []models.Stack{}},
		},
		"door-2": models.Door{
			"row-1": {ID: "row-1", Capacity: 100, MaxHeight: 200, AllowedProductTypes: models.AllowOnly(models.ProductTypePET), Stacks: []models.Stack{}},
		},
	}
}

func newStore(ref models.Refrigerator) *Store {
	return New("layout-1", ref, WithIDGenerator(seqIDs()))
}

func TestStore_AddRejectsOnceGapsOverflowCapacity(t *testing.T) {
	s := newStore(singleRow(100, 200, models.AllowOnly(models.ProductTypeCan)))

	_, err := s.AddItemFromSku(canSku("c40", 40, 50), "row-1", 0, "")
	require.NoError(t, err)
	w, _ := s.ConsumedWidth("", "row-1")
	assert.Equal(t, 40.0, w)

	_, err = s.AddItemFromSku(canSku("c40", 40, 50), "row-1", 1, "")
	require.NoError(t, err)
	w, _ = s.ConsumedWidth("", "row-1")
	assert.Equal(t, 81.0, w)

	before := s.Snapshot()
	_, err = s.AddItemFromSku(canSku("c20", 20, 50), "row-1", 2, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWidthExceeded))
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 3, s.HistoryLen())
}

func TestStore_AddUnknownRowIsNoOp(t *testing.T) {
	s := newStore(singleRow(100, 200, models.AllowAll()))
	_, err := s.AddItemFromSku(canSku("c", 10, 10), "row-9", 0, "")
	assert.True(t, errors.Is(err, ErrRowNotFound))
	assert.True(t, IsLookupFailure(err))
	assert.Equal(t, 1, s.HistoryLen())
}

func TestStore_AddEnforcesProductTypeRules(t *testing.T) {
	s := newStore(singleRow(100, 200, models.AllowOnly(models.ProductTypePET)))
	_, err := s.AddItemFromSku(canSku("c", 10, 10), "row-1", 0, "")
	assert.True(t, errors.Is(err, ErrProductTypeMismatch))

	s.SetRulesEnabled(false)
	_, err = s.AddItemFromSku(canSku("c", 10, 10), "row-1", 0, "")
	assert.NoError(t, err)
}

func TestStore_AddBlankFillsRowHeight(t *testing.T) {
	s := newStore(singleRow(100, 180, models.AllowOnly(models.ProductTypeCan)))
	item, err := s.AddItemFromSku(models.BlankSpaceSku(), "row-1", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 180.0, item.Height)
	require.NotNil(t, item.CustomWidth)
	assert.Equal(t, 50.0, *item.CustomWidth)
}

func TestStore_StackRejectsHeightExceeded(t *testing.T) {
	s := newStore(singleRow(200, 150, models.AllowAll()))
	a, err := s.AddItemFromSku(canSku("a", 40, 80), "row-1", 0, "")
	require.NoError(t, err)
	b, err := s.AddItemFromSku(canSku("b", 40, 90), "row-1", 1, "")
	require.NoError(t, err)

	before := s.State()
	err = s.StackItem(b.ID, a.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeightExceeded))
	assert.Equal(t, before.Refrigerator, s.Snapshot())
	assert.Equal(t, before.HistoryIndex, s.HistoryIndex())
}

func TestStore_StackAutoSortsWidestFirst(t *testing.T) {
	s := newStore(singleRow(200, 300, models.AllowAll()))
	narrow, _ := s.AddItemFromSku(canSku("narrow", 20, 50), "row-1", 0, "")
	wide, _ := s.AddItemFromSku(canSku("wide", 50, 50), "row-1", 1, "")
	mid, _ := s.AddItemFromSku(canSku("mid", 30, 50), "row-1", 2, "")

	require.NoError(t, s.StackItem(wide.ID, narrow.ID))
	require.NoError(t, s.StackItem(mid.ID, narrow.ID))

	row := s.Snapshot()["door-1"]["row-1"]
	require.Len(t, row.Stacks, 1)
	stack := row.Stacks[0]
	require.Len(t, stack, 3)
	for i := 1; i < len(stack); i++ {
		assert.GreaterOrEqual(t, stack[i-1].Width, stack[i].Width)
	}
	assert.Equal(t, 50.0, row.ConsumedWidth())
}

func TestStore_StackSameItemAndNotStackable(t *testing.T) {
	s := newStore(singleRow(200, 300, models.AllowAll()))
	a, _ := s.AddItemFromSku(canSku("a", 20, 50), "row-1", 0, "")
	flat := canSku("flat", 20, 50)
	flat.Constraints.Stackable = false
	f, _ := s.AddItemFromSku(flat, "row-1", 1, "")

	assert.True(t, errors.Is(s.StackItem(a.ID, a.ID), ErrSameItem))
	assert.True(t, errors.Is(s.StackItem(f.ID, a.ID), ErrNotStackable))
	assert.True(t, errors.Is(s.StackItem("ghost", a.ID), ErrItemNotFound))
}

func TestStore_MoveItemAcrossDoorsAndOutOfStack(t *testing.T) {
	s := newStore(twoDoors())
	a, _ := s.AddItemFromSku(canSku("a", 40, 50), "row-1", 0, "door-1")
	b, _ := s.AddItemFromSku(canSku("b", 30, 50), "row-1", 1, "door-1")
	require.NoError(t, s.StackItem(b.ID, a.ID))

	require.NoError(t, s.MoveItem(b.ID, "row-2", 0, "door-1"))
	ref := s.Snapshot()
	assert.Len(t, ref["door-1"]["row-1"].Stacks[0], 1, "b excised, stack kept")
	assert.Equal(t, b.ID, ref["door-1"]["row-2"].Stacks[0][0].ID)

	err := s.MoveItem(a.ID, "row-1", 0, "door-2")
	assert.True(t, errors.Is(err, ErrProductTypeMismatch))

	require.NoError(t, s.SetCurrentDoor("door-2"))
	s.SetRulesEnabled(false)
	require.NoError(t, s.MoveItem(a.ID, "row-1", 0, ""))
	ref = s.Snapshot()
	assert.Empty(t, ref["door-1"]["row-1"].Stacks, "sole member moved, stack removed")
	assert.Equal(t, a.ID, ref["door-2"]["row-1"].Stacks[0][0].ID)

	assert.True(t, errors.Is(s.MoveItem("ghost", "row-1", 0, ""), ErrItemNotFound))
}

func TestStore_ReorderStack(t *testing.T) {
	s := newStore(singleRow(200, 300, models.AllowAll()))
	a, _ := s.AddItemFromSku(canSku("a", 20, 50), "row-1", 0, "")
	b, _ := s.AddItemFromSku(canSku("b", 20, 50), "row-1", 1, "")
	c, _ := s.AddItemFromSku(canSku("c", 20, 50), "row-1", 2, "")

	require.NoError(t, s.ReorderStack("row-1", 0, 2, ""))
	ids := func() []string {
		var out []string
		for _, st := range s.Snapshot()["door-1"]["row-1"].Stacks {
			out = append(out, st[0].ID)
		}
		return out
	}
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids())

	n := s.HistoryLen()
	require.NoError(t, s.ReorderStack("row-1", 1, 1, ""))
	assert.Equal(t, n, s.HistoryLen(), "same index is a no-op")
}

func TestStore_UndoRedoInverseLaw(t *testing.T) {
	s := newStore(twoDoors())
	initial := s.Snapshot()

	a, _ := s.AddItemFromSku(canSku("a", 40, 50), "row-1", 0, "door-1")
	b, _ := s.AddItemFromSku(canSku("b", 30, 50), "row-1", 1, "door-1")
	require.NoError(t, s.StackItem(b.ID, a.ID))
	require.NoError(t, s.MoveItem(b.ID, "row-2", 0, "door-1"))
	require.NoError(t, s.RemoveItemsByID([]string{a.ID}))
	final := s.Snapshot()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Undo())
	}
	assert.Equal(t, initial, s.Snapshot())
	assert.True(t, errors.Is(s.Undo(), ErrHistoryBoundary))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Redo())
	}
	assert.Equal(t, final, s.Snapshot())
	assert.True(t, errors.Is(s.Redo(), ErrHistoryBoundary))
}

func TestStore_CommitFromMiddleTruncatesRedo(t *testing.T) {
	s := newStore(singleRow(200, 300, models.AllowAll()))
	s.AddItemFromSku(canSku("a", 20, 50), "row-1", 0, "")
	s.AddItemFromSku(canSku("b", 20, 50), "row-1", 1, "")
	s.AddItemFromSku(canSku("c", 20, 50), "row-1", 2, "")
	require.Equal(t, 4, s.HistoryLen())

	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	_, err := s.AddItemFromSku(canSku("d", 20, 50), "row-1", 0, "")
	require.NoError(t, err)

	assert.Equal(t, 3, s.HistoryLen())
	assert.Equal(t, 2, s.HistoryIndex())
	assert.False(t, s.CanRedo())
}

func TestStore_HistoryIsBounded(t *testing.T) {
	s := newStore(singleRow(10000, 300, models.AllowAll()))
	for i := 0; i < MaxHistory+10; i++ {
		_, err := s.AddItemFromSku(canSku("a", 1, 1), "row-1", 0, "")
		require.NoError(t, err)
	}
	assert.Equal(t, MaxHistory, s.HistoryLen())
	assert.Equal(t, MaxHistory-1, s.HistoryIndex())
}

func TestStore_DuplicateActions(t *testing.T) {
	s := newStore(singleRow(100, 120, models.AllowAll()))
	_, err := s.DuplicateAndAddNew()
	assert.True(t, errors.Is(err, ErrNothingSelected))

	a, _ := s.AddItemFromSku(canSku("a", 40, 50), "row-1", 0, "")
	require.NoError(t, s.SelectItem(a.ID))

	dup, err := s.DuplicateAndAddNew()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, dup.ID)
	assert.Equal(t, dup.ID, s.SelectedID())

	_, err = s.DuplicateAndAddNew()
	assert.True(t, errors.Is(err, ErrWidthExceeded), "40+40+40+2 > 100")

	_, err = s.DuplicateAndStack()
	require.NoError(t, err)
	_, err = s.DuplicateAndStack()
	assert.True(t, errors.Is(err, ErrHeightExceeded), "50+50+50 > 120")

	assert.Empty(t, s.Snapshot().CheckInvariants())
}

func TestStore_ReplaceSelectedItem(t *testing.T) {
	s := newStore(singleRow(100, 120, models.AllowOnly(models.ProductTypeCan)))
	a, _ := s.AddItemFromSku(canSku("a", 40, 50), "row-1", 0, "")
	s.AddItemFromSku(canSku("b", 40, 50), "row-1", 1, "")
	require.NoError(t, s.SelectItem(a.ID))

	err := s.ReplaceSelectedItem(canSku("wide", 60, 50), true)
	assert.True(t, errors.Is(err, ErrWidthExceeded), "60+40+1 > 100")

	pet := canSku("pet", 30, 50)
	pet.ProductType = models.ProductTypePET
	assert.True(t, errors.Is(s.ReplaceSelectedItem(pet, true), ErrProductTypeMismatch))
	require.NoError(t, s.ReplaceSelectedItem(pet, false))

	got := s.Snapshot()["door-1"]["row-1"].Stacks[0][0]
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "pet", got.SkuID)
	assert.Equal(t, 30.0, got.Width)
}

func TestStore_UpdateBlankWidthClamps(t *testing.T) {
	s := newStore(singleRow(100, 120, models.AllowAll()))
	s.AddItemFromSku(canSku("a", 40, 50), "row-1", 0, "")
	blank, err := s.AddItemFromSku(models.BlankSpaceSku(), "row-1", 1, "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateBlankWidth(blank.ID, 1000))
	got := s.Snapshot()["door-1"]["row-1"].Stacks[1][0]
	assert.InDelta(t, 59.0, got.Width, 1e-9, "100 - 40 - 1 gap")
	assert.InDelta(t, 147.5, got.WidthMM, 1e-9)

	require.NoError(t, s.UpdateBlankWidth(blank.ID, 1))
	got = s.Snapshot()["door-1"]["row-1"].Stacks[1][0]
	assert.InDelta(t, models.MinBlankWidthMM, got.WidthMM, 1e-9)

	assert.True(t, errors.Is(s.UpdateBlankWidth("item-1", 20), ErrNotBlankSpace))
}

func TestStore_RemoveRejectsNonDeletable(t *testing.T) {
	s := newStore(twoDoors())
	fixed := canSku("fixed", 20, 50)
	fixed.Constraints.Deletable = false
	item, err := s.AddItemFromSku(fixed, "row-1", 0, "door-1")
	require.NoError(t, err)
	before := s.Snapshot()
	n := s.HistoryLen()

	err = s.RemoveItemsByID([]string{item.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotDeletable))
	assert.False(t, IsLookupFailure(err))
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, n, s.HistoryLen())

	other, _ := s.AddItemFromSku(canSku("other", 20, 50), "row-2", 0, "door-1")
	require.NoError(t, s.RemoveItemsByID([]string{item.ID, other.ID}))
	assert.Len(t, s.Snapshot().Items(), 1)
}

func TestStore_RemoveAndClear(t *testing.T) {
	s := newStore(twoDoors())
	a, _ := s.AddItemFromSku(canSku("a", 20, 50), "row-1", 0, "door-1")
	b, _ := s.AddItemFromSku(canSku("b", 20, 50), "row-1", 1, "door-1")
	require.NoError(t, s.StackItem(b.ID, a.ID))
	require.NoError(t, s.SelectItem(b.ID))

	require.NoError(t, s.RemoveItemsByID([]string{b.ID, "ghost"}))
	assert.Empty(t, s.SelectedID())
	assert.Len(t, s.Snapshot()["door-1"]["row-1"].Stacks[0], 1)

	assert.True(t, errors.Is(s.RemoveItemsByID([]string{"ghost"}), ErrItemNotFound))

	s.AddItemFromSku(canSku("c", 20, 50), "row-2", 0, "door-1")
	n := s.HistoryLen()
	require.NoError(t, s.ClearDraft())
	assert.Equal(t, n+1, s.HistoryLen())
	ref := s.Snapshot()
	assert.Empty(t, ref.Items())
	assert.Equal(t, 3, ref.RowCount(), "structure kept")

	require.NoError(t, s.Undo())
	assert.Len(t, s.Snapshot().Items(), 2)
}

func TestStore_OnCommitFires(t *testing.T) {
	var states []State
	s := New("layout-1", singleRow(100, 100, models.AllowAll()), WithIDGenerator(seqIDs()), OnCommit(func(st State) {
		states = append(states, st)
	}))
	s.AddItemFromSku(canSku("a", 10, 10), "row-1", 0, "")
	s.Undo()
	s.AddItemFromSku(canSku("a", 1000, 10), "row-1", 0, "")

	require.Len(t, states, 2)
	assert.Equal(t, 1, states[0].HistoryIndex)
	assert.Equal(t, 0, states[1].HistoryIndex)
	assert.Equal(t, "layout-1", states[1].LayoutID)
}

func TestRestore_RoundTripAndValidation(t *testing.T) {
	s := newStore(singleRow(100, 100, models.AllowAll()))
	s.AddItemFromSku(canSku("a", 10, 10), "row-1", 0, "")
	s.AddItemFromSku(canSku("b", 10, 10), "row-1", 0, "")
	s.Undo()

	restored, err := Restore(s.State())
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.True(t, restored.CanRedo())

	bad := s.State()
	bad.HistoryIndex = 7
	_, err = Restore(bad)
	assert.Error(t, err)
}
