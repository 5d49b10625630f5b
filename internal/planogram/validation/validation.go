package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"planogram-editor/internal/planogram/models"

	"github.com/samber/lo"
)

// ============================================================
// Rejection reasons
// ============================================================

type Reason string

const (
	ReasonNone                Reason = ""
	ReasonHeightExceeded      Reason = "height-exceeded"
	ReasonWidthExceeded       Reason = "width-exceeded"
	ReasonNotStackable        Reason = "not-stackable"
	ReasonProductTypeMismatch Reason = "product-type-mismatch"
	ReasonSameItem            Reason = "same-item"
	ReasonNotFound            Reason = "not-found"
)

// ============================================================
// Drop targets
// ============================================================

// DropTargets is computed once per gesture.
type DropTargets struct {
	Rows   map[RowKey]bool
	Stacks map[string]bool // keyed by the front item id of the target stack
}

func (t DropTargets) RowValid(key RowKey) bool { return t.Rows[key] }

func (t DropTargets) StackValid(frontItemID string) bool { return t.Stacks[frontItemID] }

func (t DropTargets) MarshalJSON() ([]byte, error) {
	rows := lo.Map(lo.Keys(t.Rows), func(k RowKey, _ int) string { return k.String() })
	sort.Strings(rows)
	stacks := lo.Keys(t.Stacks)
	sort.Strings(stacks)
	return json.Marshal(struct {
		ValidRowIDs         []string `json:"validRowIds"`
		ValidStackTargetIDs []string `json:"validStackTargetIds"`
	}{rows, stacks})
}

// ValidateDropTargets returns every row that can receive the dragged item
// and every stack it can be stacked onto.
func ValidateDropTargets(ref models.Refrigerator, dragged Dragged, rulesEnabled bool) DropTargets {
	targets := DropTargets{Rows: map[RowKey]bool{}, Stacks: map[string]bool{}}

	for _, doorID := range ref.DoorIDs() {
		door := ref[doorID]
		for _, rowID := range door.RowIDs() {
			key := RowKey{DoorID: doorID, RowID: rowID}
			if reason, _ := ExplainRow(ref, dragged, key, rulesEnabled); reason == ReasonNone {
				targets.Rows[key] = true
			}

			if !dragged.Stackable {
				continue
			}
			for si, stack := range door[rowID].Stacks {
				front, ok := stack.Front()
				if !ok {
					continue
				}
				if reason, _ := checkStackTarget(ref, dragged, key, si, rulesEnabled); reason == ReasonNone {
					targets.Stacks[front.ID] = true
				}
			}
		}
	}
	return targets
}

// ExplainRow tells why a row cannot receive the dragged item as a new stack.
// The origin row always accepts a reorder.
func ExplainRow(ref models.Refrigerator, dragged Dragged, key RowKey, rulesEnabled bool) (Reason, string) {
	row, ok := ref.Row(key.DoorID, key.RowID)
	if !ok {
		return ReasonNotFound, "Shelf not found"
	}
	if dragged.fromRow(key.DoorID, key.RowID) {
		return ReasonNone, ""
	}
	if rulesEnabled && !dragged.acceptedBy(row) {
		return ReasonProductTypeMismatch, fmt.Sprintf("Shelf doesn't accept %s", dragged.ProductType)
	}
	if !dragged.Blank && !row.FitsHeight(dragged.Height) {
		return ReasonHeightExceeded, fmt.Sprintf("Too tall: %.0fmm available", models.PxToMM(row.MaxHeight))
	}
	if !row.FitsWidth(row.WidthWithNewStack(dragged.Width)) {
		return ReasonWidthExceeded, fmt.Sprintf("Not enough space: %.0fmm left", models.PxToMM(freeWidth(row)))
	}
	return ReasonNone, ""
}

// freeWidth is what a new stack could still occupy, gap included.
func freeWidth(row models.Row) float64 {
	free := row.Capacity - row.ConsumedWidth()
	if len(row.Stacks) > 0 {
		free -= models.StackGap
	}
	return math.Max(0, free)
}

// checkStackTarget validates stacking the dragged stack onto row.Stacks[stackIndex].
// The second value is the height left in the target stack: before stacking when
// rejected for height, after stacking otherwise.
func checkStackTarget(ref models.Refrigerator, dragged Dragged, key RowKey, stackIndex int, rulesEnabled bool) (Reason, float64) {
	row, ok := ref.Row(key.DoorID, key.RowID)
	if !ok || stackIndex < 0 || stackIndex >= len(row.Stacks) {
		return ReasonNotFound, 0
	}
	target := row.Stacks[stackIndex]
	available := row.MaxHeight - target.Height()

	if dragged.fromStack(key.DoorID, key.RowID, stackIndex) {
		return ReasonSameItem, available
	}
	front, _ := target.Front()
	if !dragged.Stackable || !target.AllStackable() || front.IsBlank() {
		return ReasonNotStackable, available
	}
	if !row.FitsHeight(target.Height() + dragged.StackHeight) {
		return ReasonHeightExceeded, available
	}
	if rulesEnabled && !dragged.stackAcceptedBy(row) {
		return ReasonProductTypeMismatch, available
	}
	if !row.FitsWidth(widthAfterStack(row, stackIndex, dragged, dragged.fromRow(key.DoorID, key.RowID))) {
		return ReasonWidthExceeded, available
	}
	return ReasonNone, available - dragged.StackHeight
}

func widthAfterStack(row models.Row, targetIndex int, dragged Dragged, sameRow bool) float64 {
	footprints := make([]float64, 0, len(row.Stacks))
	for i, s := range row.Stacks {
		if sameRow && i == dragged.Origin.StackIndex {
			continue
		}
		w := s.Width()
		if i == targetIndex {
			w = math.Max(w, dragged.StackWidth)
		}
		footprints = append(footprints, w)
	}
	return models.ConsumedWidth(footprints)
}
