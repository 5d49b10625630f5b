package interaction

import (
	"planogram-editor/internal/planogram/validation"
)

type Kind string

const (
	KindNone    Kind = "none"
	KindReorder Kind = "reorder"
	KindStack   Kind = "stack"
)

// Indicator is the live classification of the drag target. It is a plain
// value: two indicators are the same iff they are ==.
type Indicator struct {
	Kind          Kind                   `json:"kind"`
	Row           validation.RowKey      `json:"row"`
	Index         int                    `json:"index"`
	TargetStackID string                 `json:"targetStackId,omitempty"`
	Opportunity   validation.Opportunity `json:"opportunity"`
	Message       string                 `json:"message,omitempty"`
}

func none() Indicator { return Indicator{Kind: KindNone} }

// Hover is what the host drag primitive reports on each pointer move.
type Hover struct {
	Row        validation.RowKey `json:"row"`        // zero when outside every row
	Index      int               `json:"index"`      // insertion slot among the row's stacks
	OverItemID string            `json:"overItemId"` // item directly under the pointer
}
