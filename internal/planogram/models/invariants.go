package models

import "fmt"

// ============================================================
// Invariants
// ============================================================

type ViolationKind string

const (
	ViolationWidth  ViolationKind = "width"
	ViolationHeight ViolationKind = "height"
	ViolationEmpty  ViolationKind = "empty-stack"
	ViolationDupID  ViolationKind = "duplicate-id"
)

type Violation struct {
	Kind       ViolationKind `json:"kind"`
	DoorID     string        `json:"doorId"`
	RowID      string        `json:"rowId"`
	StackIndex int           `json:"stackIndex"`
	Detail     string        `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s/%s[%d] %s: %s", v.DoorID, v.RowID, v.StackIndex, v.Kind, v.Detail)
}

// CheckInvariants reports every capacity, height and identity violation.
func (r Refrigerator) CheckInvariants() []Violation {
	var out []Violation
	seen := map[string]bool{}

	for _, doorID := range r.DoorIDs() {
		door := r[doorID]
		for _, rowID := range door.RowIDs() {
			row := door[rowID]
			if consumed := row.ConsumedWidth(); !row.FitsWidth(consumed) {
				out = append(out, Violation{
					Kind: ViolationWidth, DoorID: doorID, RowID: rowID, StackIndex: -1,
					Detail: fmt.Sprintf("consumed %.1fpx > capacity %.1fpx", consumed, row.Capacity),
				})
			}
			for si, stack := range row.Stacks {
				if len(stack) == 0 {
					out = append(out, Violation{Kind: ViolationEmpty, DoorID: doorID, RowID: rowID, StackIndex: si})
					continue
				}
				if h := stack.Height(); !row.FitsHeight(h) {
					out = append(out, Violation{
						Kind: ViolationHeight, DoorID: doorID, RowID: rowID, StackIndex: si,
						Detail: fmt.Sprintf("height %.1fpx > max %.1fpx", h, row.MaxHeight),
					})
				}
				for _, item := range stack {
					if seen[item.ID] {
						out = append(out, Violation{Kind: ViolationDupID, DoorID: doorID, RowID: rowID, StackIndex: si, Detail: item.ID})
					}
					seen[item.ID] = true
				}
			}
		}
	}
	return out
}
