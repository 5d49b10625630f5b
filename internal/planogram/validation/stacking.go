package validation

import (
	"fmt"

	"planogram-editor/internal/planogram/models"
)

// ============================================================
// Stacking opportunity
// ============================================================

type Band string

const (
	BandAmple    Band = "ample"
	BandCaution  Band = "caution"
	BandCritical Band = "critical"
)

// Opportunity is a comparable value so that callers can diff successive
// evaluations with ==.
type Opportunity struct {
	TargetID    string  `json:"targetId"`
	Valid       bool    `json:"valid"`
	Reason      Reason  `json:"reason,omitempty"`
	Band        Band    `json:"band,omitempty"`
	RemainingPx float64 `json:"remainingPx"`
	RemainingMM float64 `json:"remainingMM"`
	Message     string  `json:"message,omitempty"`
}

// EvaluateStackingOpportunity classifies stacking the dragged item onto the
// stack that holds targetItemID.
func EvaluateStackingOpportunity(ref models.Refrigerator, dragged Dragged, targetItemID string, rulesEnabled bool, policy Policy) Opportunity {
	loc, ok := ref.Locate(targetItemID)
	if !ok {
		return Opportunity{TargetID: targetItemID, Reason: ReasonNotFound, Message: "Target not found"}
	}
	row, _ := ref.Row(loc.DoorID, loc.RowID)
	target := row.Stacks[loc.StackIndex]
	front, _ := target.Front()

	if dragged.ItemID != "" && dragged.ItemID == targetItemID {
		return rejected(front.ID, ReasonSameItem, row.MaxHeight-target.Height())
	}

	reason, remaining := checkStackTarget(ref, dragged, RowKey{DoorID: loc.DoorID, RowID: loc.RowID}, loc.StackIndex, rulesEnabled)
	if reason != ReasonNone {
		return rejected(front.ID, reason, remaining)
	}

	op := Opportunity{
		TargetID:    front.ID,
		Valid:       true,
		RemainingPx: remaining,
		RemainingMM: models.PxToMM(remaining),
	}

	fill := (target.Height() + dragged.StackHeight) / row.MaxHeight
	switch {
	case fill > policy.CriticalRatio:
		op.Band = BandCritical
		op.Message = fmt.Sprintf("Almost full: %.0fmm left", op.RemainingMM)
	case fill >= policy.CautionRatio:
		op.Band = BandCaution
		op.Message = fmt.Sprintf("Tight fit: %.0fmm left", op.RemainingMM)
	default:
		op.Band = BandAmple
	}
	return op
}

func rejected(targetID string, reason Reason, availablePx float64) Opportunity {
	op := Opportunity{
		TargetID:    targetID,
		Reason:      reason,
		RemainingPx: availablePx,
		RemainingMM: models.PxToMM(availablePx),
	}
	op.Message = Message(reason, op.RemainingMM)
	return op
}

// Message renders a short user-facing explanation.
func Message(reason Reason, availableMM float64) string {
	switch reason {
	case ReasonHeightExceeded:
		return fmt.Sprintf("Too tall: %.0fmm available", availableMM)
	case ReasonWidthExceeded:
		return "Not enough shelf width"
	case ReasonNotStackable:
		return "This product can't be stacked"
	case ReasonProductTypeMismatch:
		return "This shelf doesn't accept that product type"
	case ReasonSameItem:
		return "Can't stack an item onto itself"
	case ReasonNotFound:
		return "Target not found"
	}
	return ""
}
