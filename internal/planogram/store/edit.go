package store

import (
	"math"

	"planogram-editor/internal/planogram/models"
)

// ============================================================
// Duplicate
// ============================================================

// DuplicateAndAddNew clones the selected item into a new stack right after
// its own. The copy becomes the selection.
func (s *Store) DuplicateAndAddNew() (models.Item, error) {
	ref, loc, item, err := s.selected()
	if err != nil {
		return models.Item{}, err
	}
	row, _ := ref.Row(loc.DoorID, loc.RowID)
	if !row.FitsWidth(row.WidthWithNewStack(item.Width)) {
		return models.Item{}, s.rejected("duplicate", reject(ReasonWidthExceeded, "Not enough shelf width"))
	}

	dup := item.Clone()
	dup.ID = s.newID()

	next := ref.Clone()
	row = next[loc.DoorID][loc.RowID]
	row.Stacks = insertStack(row.Stacks, loc.StackIndex+1, models.Stack{dup})
	next.SetRow(loc.DoorID, row)

	s.commit("duplicate "+item.ID, next)
	s.selectedID = dup.ID
	return dup, nil
}

// DuplicateAndStack clones the selected item on top of its own stack.
func (s *Store) DuplicateAndStack() (models.Item, error) {
	ref, loc, item, err := s.selected()
	if err != nil {
		return models.Item{}, err
	}
	row, _ := ref.Row(loc.DoorID, loc.RowID)
	stack := row.Stacks[loc.StackIndex]
	if !item.Constraints.Stackable || item.IsBlank() || !stack.AllStackable() {
		return models.Item{}, s.rejected("duplicate-stack", reject(ReasonNotStackable, "This product can't be stacked"))
	}
	if available := row.MaxHeight - stack.Height(); !row.FitsHeight(stack.Height() + item.Height) {
		return models.Item{}, s.rejected("duplicate-stack", reject(ReasonHeightExceeded, "Too tall: %.0fmm available", models.PxToMM(available)))
	}

	dup := item.Clone()
	dup.ID = s.newID()

	next := ref.Clone()
	row = next[loc.DoorID][loc.RowID]
	merged := append(row.Stacks[loc.StackIndex], dup)
	if s.policy.SortByWidth {
		sortWidestFirst(merged)
	}
	row.Stacks[loc.StackIndex] = merged
	next.SetRow(loc.DoorID, row)

	s.commit("duplicate-stack "+item.ID, next)
	s.selectedID = dup.ID
	return dup, nil
}

// ============================================================
// Replace
// ============================================================

// ReplaceSelectedItem swaps the Sku of the selected item in place, keeping
// its instance id and position.
func (s *Store) ReplaceSelectedItem(sku models.Sku, rulesEnabled bool) error {
	ref, loc, item, err := s.selected()
	if err != nil {
		return err
	}
	row, _ := ref.Row(loc.DoorID, loc.RowID)

	replacement := item.WithSku(sku)
	if replacement.IsBlank() {
		fillBlank(&replacement, row)
	}
	if rulesEnabled && !replacement.IsBlank() && !row.AllowedProductTypes.Allows(replacement.ProductType) {
		return s.rejected("replace", reject(ReasonProductTypeMismatch, "This shelf doesn't accept %s", replacement.ProductType))
	}

	stack := row.Stacks[loc.StackIndex].Clone()
	stack[loc.ItemIndex] = replacement
	if len(stack) > 1 && (!replacement.Constraints.Stackable || replacement.IsBlank()) {
		return s.rejected("replace", reject(ReasonNotStackable, "This product can't be stacked"))
	}

	next := ref.Clone()
	nrow := next[loc.DoorID][loc.RowID]
	if len(stack) > 1 && s.policy.SortByWidth {
		sortWidestFirst(stack)
	}
	nrow.Stacks[loc.StackIndex] = stack
	next.SetRow(loc.DoorID, nrow)

	if err := s.checkRow(next, loc.DoorID, loc.RowID); err != nil {
		if err.Reason == ReasonHeightExceeded {
			others := row.Stacks[loc.StackIndex].Height() - item.Height
			err = reject(ReasonHeightExceeded, "Too tall: %.0fmm available", models.PxToMM(row.MaxHeight-others))
		}
		return s.rejected("replace", err)
	}

	s.commit("replace "+item.ID+" with "+sku.SkuID, next)
	return nil
}

// ============================================================
// Blank space
// ============================================================

// UpdateBlankWidth resizes a blank space, clamped to [MinBlankWidthMM, room left in the row].
func (s *Store) UpdateBlankWidth(itemID string, widthMM float64) error {
	ref := s.current()
	loc, ok := ref.Locate(itemID)
	if !ok {
		return s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", itemID))
	}
	item, _ := ref.Item(loc)
	if !item.IsBlank() {
		return s.rejected("blank-width", reject(ReasonNotBlankSpace, "Only blank spaces can be resized"))
	}
	row, _ := ref.Row(loc.DoorID, loc.RowID)

	othersPx := row.ConsumedWidth() - row.Stacks[loc.StackIndex].Width()
	maxMM := models.PxToMM(row.Capacity - othersPx)
	clamped := math.Min(math.Max(widthMM, models.MinBlankWidthMM), maxMM)
	if clamped == item.WidthMM {
		return nil
	}

	next := ref.Clone()
	nrow := next[loc.DoorID][loc.RowID]
	resized := nrow.Stacks[loc.StackIndex][loc.ItemIndex]
	resized.WidthMM = clamped
	resized.Width = models.MMToPx(clamped)
	resized.CustomWidth = &clamped
	nrow.Stacks[loc.StackIndex][loc.ItemIndex] = resized
	next.SetRow(loc.DoorID, nrow)

	s.commit("blank-width "+itemID, next)
	return nil
}

func (s *Store) selected() (models.Refrigerator, models.Location, models.Item, error) {
	ref := s.current()
	if s.selectedID == "" {
		return nil, models.Location{}, models.Item{}, reject(ReasonNothingSelected, "Select an item first")
	}
	loc, ok := ref.Locate(s.selectedID)
	if !ok {
		return nil, models.Location{}, models.Item{}, s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", s.selectedID))
	}
	item, _ := ref.Item(loc)
	return ref, loc, item, nil
}
