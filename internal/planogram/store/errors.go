package store

import (
	"errors"
	"fmt"

	"planogram-editor/internal/planogram/validation"
)

// ============================================================
// Rejections
// ============================================================

type Reason string

const (
	ReasonRowNotFound         Reason = "RowNotFound"
	ReasonHeightExceeded      Reason = "HeightExceeded"
	ReasonWidthExceeded       Reason = "WidthExceeded"
	ReasonProductTypeMismatch Reason = "ProductTypeMismatch"
	ReasonNotStackable        Reason = "NotStackable"
	ReasonSameItem            Reason = "SameItem"
	ReasonItemNotFound        Reason = "ItemNotFound"
	ReasonDoorNotFound        Reason = "DoorNotFound"
	ReasonNothingSelected     Reason = "NothingSelected"
	ReasonNotBlankSpace       Reason = "NotBlankSpace"
	ReasonNotDeletable        Reason = "NotDeletable"
	ReasonHistoryBoundary     Reason = "HistoryBoundary"
)

// RejectionError means the requested change did not happen. The store is
// left exactly as it was.
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is matches sentinels by reason so errors.Is(err, ErrWidthExceeded) works
// regardless of the message.
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Reason == e.Reason
}

var (
	ErrRowNotFound         = &RejectionError{Reason: ReasonRowNotFound}
	ErrHeightExceeded      = &RejectionError{Reason: ReasonHeightExceeded}
	ErrWidthExceeded       = &RejectionError{Reason: ReasonWidthExceeded}
	ErrProductTypeMismatch = &RejectionError{Reason: ReasonProductTypeMismatch}
	ErrNotStackable        = &RejectionError{Reason: ReasonNotStackable}
	ErrSameItem            = &RejectionError{Reason: ReasonSameItem}
	ErrItemNotFound        = &RejectionError{Reason: ReasonItemNotFound}
	ErrDoorNotFound        = &RejectionError{Reason: ReasonDoorNotFound}
	ErrNothingSelected     = &RejectionError{Reason: ReasonNothingSelected}
	ErrNotBlankSpace       = &RejectionError{Reason: ReasonNotBlankSpace}
	ErrNotDeletable        = &RejectionError{Reason: ReasonNotDeletable}
	ErrHistoryBoundary     = &RejectionError{Reason: ReasonHistoryBoundary}
)

func reject(reason Reason, format string, args ...any) *RejectionError {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// IsLookupFailure reports stale references (missing row, item or door).
func IsLookupFailure(err error) bool {
	reason, ok := ReasonOf(err)
	if !ok {
		return false
	}
	switch reason {
	case ReasonRowNotFound, ReasonItemNotFound, ReasonDoorNotFound:
		return true
	}
	return false
}

func fromValidation(reason validation.Reason, message string) *RejectionError {
	mapped := map[validation.Reason]Reason{
		validation.ReasonHeightExceeded:      ReasonHeightExceeded,
		validation.ReasonWidthExceeded:       ReasonWidthExceeded,
		validation.ReasonNotStackable:        ReasonNotStackable,
		validation.ReasonProductTypeMismatch: ReasonProductTypeMismatch,
		validation.ReasonSameItem:            ReasonSameItem,
		validation.ReasonNotFound:            ReasonRowNotFound,
	}[reason]
	if mapped == "" {
		mapped = ReasonRowNotFound
	}
	return &RejectionError{Reason: mapped, Message: message}
}
