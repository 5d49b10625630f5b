package models

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// ============================================================
// Door & Refrigerator
// ============================================================

// Door maps row id → Row. Rows are ordered top to bottom by their template
// Position; rows without one follow the natural order of their ids
// (row-1, row-2, …, row-10).
type Door map[string]Row

// Refrigerator maps door id → Door. A single-door unit is the one-key case.
type Refrigerator map[string]Door

// Location addresses an item inside a Refrigerator.
type Location struct {
	DoorID     string `json:"doorId"`
	RowID      string `json:"rowId"`
	StackIndex int    `json:"stackIndex"`
	ItemIndex  int    `json:"itemIndex"`
}

// RowIDs returns the door's row ids top to bottom.
func (d Door) RowIDs() []string {
	ids := SortedIDs(lo.Keys(d))
	sort.SliceStable(ids, func(i, j int) bool { return d[ids[i]].Position < d[ids[j]].Position })
	return ids
}

// ContentWidth is the interior width of the door: its widest row.
func (d Door) ContentWidth() float64 {
	return lo.Max(lo.Map(lo.Values(d), func(r Row, _ int) float64 { return r.Capacity }))
}

// ContentHeight is the sum of the row heights.
func (d Door) ContentHeight() float64 {
	return lo.SumBy(lo.Values(d), func(r Row) float64 { return r.MaxHeight })
}

func (d Door) Clone() Door {
	out := make(Door, len(d))
	for id, row := range d {
		out[id] = row.Clone()
	}
	return out
}

// DoorIDs returns the door ids left to right.
func (r Refrigerator) DoorIDs() []string {
	return SortedIDs(lo.Keys(r))
}

// Clone is a deep copy.
func (r Refrigerator) Clone() Refrigerator {
	if r == nil {
		return nil
	}
	out := make(Refrigerator, len(r))
	for id, door := range r {
		out[id] = door.Clone()
	}
	return out
}

// Row returns the row addressed by door and row id.
func (r Refrigerator) Row(doorID, rowID string) (Row, bool) {
	door, ok := r[doorID]
	if !ok {
		return Row{}, false
	}
	row, ok := door[rowID]
	return row, ok
}

// SetRow replaces a row in place. The caller owns r.
func (r Refrigerator) SetRow(doorID string, row Row) {
	if _, ok := r[doorID]; !ok {
		r[doorID] = Door{}
	}
	r[doorID][row.ID] = row
}

// Locate scans the layout for an item id.
func (r Refrigerator) Locate(itemID string) (Location, bool) {
	for _, doorID := range r.DoorIDs() {
		door := r[doorID]
		for _, rowID := range door.RowIDs() {
			for si, stack := range door[rowID].Stacks {
				for ii, item := range stack {
					if item.ID == itemID {
						return Location{DoorID: doorID, RowID: rowID, StackIndex: si, ItemIndex: ii}, true
					}
				}
			}
		}
	}
	return Location{}, false
}

// Item returns the item at loc.
func (r Refrigerator) Item(loc Location) (Item, bool) {
	row, ok := r.Row(loc.DoorID, loc.RowID)
	if !ok || loc.StackIndex < 0 || loc.StackIndex >= len(row.Stacks) {
		return Item{}, false
	}
	stack := row.Stacks[loc.StackIndex]
	if loc.ItemIndex < 0 || loc.ItemIndex >= len(stack) {
		return Item{}, false
	}
	return stack[loc.ItemIndex], true
}

// Items lists every placed item in door/row/stack order.
func (r Refrigerator) Items() []Item {
	var items []Item
	for _, doorID := range r.DoorIDs() {
		door := r[doorID]
		for _, rowID := range door.RowIDs() {
			for _, stack := range door[rowID].Stacks {
				items = append(items, stack...)
			}
		}
	}
	return items
}

// RowCount is the total number of rows across all doors.
func (r Refrigerator) RowCount() int {
	return lo.SumBy(lo.Values(r), func(d Door) int { return len(d) })
}

// ============================================================
// Natural id ordering
// ============================================================

// SortedIDs orders ids so that numeric suffixes compare by value.
func SortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.SliceStable(out, func(i, j int) bool { return NaturalLess(out[i], out[j]) })
	return out
}

// NaturalLess orders ids by prefix, then numeric suffix.
func NaturalLess(a, b string) bool {
	pa, na, okA := splitNumericSuffix(a)
	pb, nb, okB := splitNumericSuffix(b)
	if pa != pb || !okA || !okB {
		return a < b
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitNumericSuffix(s string) (string, int, bool) {
	end := strings.LastIndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	digits := s[end+1:]
	if digits == "" {
		return s, 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return s, 0, false
	}
	return s[:end+1], n, true
}
