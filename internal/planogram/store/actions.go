package store

import (
	"sort"

	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/validation"
)

// ============================================================
// Placement
// ============================================================

// AddItemFromSku inserts a fresh item as a new one-item stack at stackIndex.
func (s *Store) AddItemFromSku(sku models.Sku, rowID string, stackIndex int, doorID string) (models.Item, error) {
	doorID = s.resolveDoor(doorID)
	ref := s.current()
	row, err := s.row(ref, doorID, rowID)
	if err != nil {
		return models.Item{}, err
	}

	item := models.NewItem(s.newID(), sku)
	if item.IsBlank() {
		fillBlank(&item, row)
	}

	reason, msg := validation.ExplainRow(ref, validation.FromSku(skuOf(item)), validation.RowKey{DoorID: doorID, RowID: rowID}, s.rulesEnabled)
	if reason != validation.ReasonNone {
		return models.Item{}, s.rejected("add", fromValidation(reason, msg))
	}

	next := ref.Clone()
	row = next[doorID][rowID]
	row.Stacks = insertStack(row.Stacks, stackIndex, models.Stack{item})
	next.SetRow(doorID, row)

	s.commit("add "+item.SkuID, next)
	return item, nil
}

// MoveItem lifts one item out of its stack and drops it as a new one-item
// stack at stackIndex of the target row. stackIndex counts stacks after the
// item has been lifted.
func (s *Store) MoveItem(itemID, rowID string, stackIndex int, doorID string) error {
	doorID = s.resolveDoor(doorID)
	ref := s.current()
	loc, ok := ref.Locate(itemID)
	if !ok {
		return s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", itemID))
	}
	dest, err := s.row(ref, doorID, rowID)
	if err != nil {
		return err
	}
	item, _ := ref.Item(loc)

	sameRow := loc.DoorID == doorID && loc.RowID == rowID
	if !sameRow && s.rulesEnabled && !item.IsBlank() && !dest.AllowedProductTypes.Allows(item.ProductType) {
		return s.rejected("move", reject(ReasonProductTypeMismatch, "This shelf doesn't accept %s", item.ProductType))
	}
	if !sameRow && item.IsBlank() {
		fillBlank(&item, dest)
	}
	if !item.IsBlank() && !dest.FitsHeight(item.Height) {
		return s.rejected("move", reject(ReasonHeightExceeded, "Too tall: %.0fmm available", models.PxToMM(dest.MaxHeight)))
	}

	next := ref.Clone()
	removeAt(next, loc)

	dest = next[doorID][rowID]
	if !dest.FitsWidth(dest.WidthWithNewStack(item.Width)) {
		return s.rejected("move", reject(ReasonWidthExceeded, "Not enough shelf width"))
	}
	dest.Stacks = insertStack(dest.Stacks, stackIndex, models.Stack{item})
	next.SetRow(doorID, dest)

	s.commit("move "+itemID, next)
	return nil
}

// ReorderStack moves a whole stack within its row.
func (s *Store) ReorderStack(rowID string, oldIndex, newIndex int, doorID string) error {
	doorID = s.resolveDoor(doorID)
	ref := s.current()
	row, err := s.row(ref, doorID, rowID)
	if err != nil {
		return err
	}
	if oldIndex < 0 || oldIndex >= len(row.Stacks) {
		return s.lookupFailed(reject(ReasonItemNotFound, "stack %d not found in row %s", oldIndex, rowID))
	}
	newIndex = clamp(newIndex, 0, len(row.Stacks)-1)
	if newIndex == oldIndex {
		return nil
	}

	next := ref.Clone()
	row = next[doorID][rowID]
	moved := row.Stacks[oldIndex]
	row.Stacks = append(row.Stacks[:oldIndex], row.Stacks[oldIndex+1:]...)
	row.Stacks = insertStack(row.Stacks, newIndex, moved)
	next.SetRow(doorID, row)

	s.commit("reorder "+rowID, next)
	return nil
}

// StackItem merges the stack holding draggedID onto the stack holding
// targetID. The merged stack is re-sorted widest-first when the policy asks.
func (s *Store) StackItem(draggedID, targetID string) error {
	if draggedID == targetID {
		return s.rejected("stack", reject(ReasonSameItem, "Can't stack an item onto itself"))
	}
	ref := s.current()
	from, ok := ref.Locate(draggedID)
	if !ok {
		return s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", draggedID))
	}
	to, ok := ref.Locate(targetID)
	if !ok {
		return s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", targetID))
	}

	dragged, _ := validation.FromItem(ref, draggedID)
	op := validation.EvaluateStackingOpportunity(ref, dragged, targetID, s.rulesEnabled, s.policy)
	if !op.Valid {
		return s.rejected("stack", fromValidation(op.Reason, op.Message))
	}

	next := ref.Clone()
	source := next[from.DoorID][from.RowID]
	carried := source.Stacks[from.StackIndex]

	target := next[to.DoorID][to.RowID]
	merged := append(target.Stacks[to.StackIndex].Clone(), carried...)
	if s.policy.SortByWidth {
		sortWidestFirst(merged)
	}
	target.Stacks[to.StackIndex] = merged
	next.SetRow(to.DoorID, target)

	source = next[from.DoorID][from.RowID]
	source.Stacks = append(source.Stacks[:from.StackIndex:from.StackIndex], source.Stacks[from.StackIndex+1:]...)
	next.SetRow(from.DoorID, source)

	if err := s.checkRow(next, to.DoorID, to.RowID); err != nil {
		return s.rejected("stack", err)
	}

	s.commit("stack "+draggedID+" on "+targetID, next)
	return nil
}

// ============================================================
// Removal
// ============================================================

// RemoveItemsByID deletes items; stacks left empty are dropped. Unknown and
// non-deletable ids are skipped, and the call is rejected when nothing was
// removed.
func (s *Store) RemoveItemsByID(itemIDs []string) error {
	next := s.current().Clone()
	found, removed := 0, 0
	for _, id := range itemIDs {
		loc, ok := next.Locate(id)
		if !ok {
			continue
		}
		found++
		item, _ := next.Item(loc)
		if !item.Constraints.Deletable && !item.IsBlank() {
			continue
		}
		removeAt(next, loc)
		removed++
	}
	switch {
	case found == 0:
		return s.lookupFailed(reject(ReasonItemNotFound, "no item among %v", itemIDs))
	case removed == 0:
		return reject(ReasonNotDeletable, "This product can't be removed")
	}

	s.commit("remove", next)
	return nil
}

// ClearDraft empties every row and keeps the structure.
func (s *Store) ClearDraft() error {
	ref := s.current()
	if len(ref.Items()) == 0 {
		return nil
	}
	next := ref.Clone()
	for doorID, door := range next {
		for rowID, row := range door {
			row.Stacks = []models.Stack{}
			next[doorID][rowID] = row
		}
	}
	s.selectedID = ""
	s.commit("clear", next)
	return nil
}

// ============================================================
// Helpers
// ============================================================

// checkRow enforces both row invariants on a candidate snapshot.
func (s *Store) checkRow(ref models.Refrigerator, doorID, rowID string) *RejectionError {
	row, _ := ref.Row(doorID, rowID)
	if !row.FitsWidth(row.ConsumedWidth()) {
		return reject(ReasonWidthExceeded, "Not enough shelf width")
	}
	for _, stack := range row.Stacks {
		if !row.FitsHeight(stack.Height()) {
			return reject(ReasonHeightExceeded, "Too tall: %.0fmm available", models.PxToMM(row.MaxHeight))
		}
	}
	return nil
}

// removeAt excises the item at loc from ref, dropping the stack when it
// becomes empty. ref must be owned by the caller.
func removeAt(ref models.Refrigerator, loc models.Location) {
	row := ref[loc.DoorID][loc.RowID]
	stack := row.Stacks[loc.StackIndex]
	if len(stack) <= 1 {
		row.Stacks = append(row.Stacks[:loc.StackIndex:loc.StackIndex], row.Stacks[loc.StackIndex+1:]...)
	} else {
		row.Stacks[loc.StackIndex] = append(stack[:loc.ItemIndex:loc.ItemIndex], stack[loc.ItemIndex+1:]...)
	}
	ref.SetRow(loc.DoorID, row)
}

func insertStack(stacks []models.Stack, index int, stack models.Stack) []models.Stack {
	index = clamp(index, 0, len(stacks))
	out := make([]models.Stack, 0, len(stacks)+1)
	out = append(out, stacks[:index]...)
	out = append(out, stack)
	return append(out, stacks[index:]...)
}

func sortWidestFirst(stack models.Stack) {
	sort.SliceStable(stack, func(i, j int) bool { return stack[i].Width > stack[j].Width })
}

func fillBlank(item *models.Item, row models.Row) {
	item.Height = row.MaxHeight
	item.HeightMM = models.PxToMM(row.MaxHeight)
	if item.CustomWidth == nil {
		w := item.WidthMM
		item.CustomWidth = &w
	}
}

// skuOf rebuilds the template view of an item for validation.
func skuOf(item models.Item) models.Sku {
	return models.Sku{
		SkuID:       item.SkuID,
		Name:        item.Name,
		WidthMM:     item.WidthMM,
		HeightMM:    item.HeightMM,
		Width:       item.Width,
		Height:      item.Height,
		ImageURL:    item.ImageURL,
		ProductType: item.ProductType,
		Constraints: item.Constraints,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
