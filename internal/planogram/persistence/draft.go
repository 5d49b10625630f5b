package persistence

import (
	"time"

	"planogram-editor/internal/planogram/store"
)

// Draft is the persisted editing session of one layout.
type Draft struct {
	store.State
	Timestamp string `json:"timestamp"` // RFC3339
}

// NewDraft stamps state with now.
func NewDraft(state store.State, now time.Time) Draft {
	return Draft{State: state, Timestamp: now.UTC().Format(time.RFC3339)}
}

func (d Draft) SavedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, d.Timestamp)
}

// Summary is a draft listing entry.
type Summary struct {
	LayoutID string    `json:"layoutId"`
	SavedAt  time.Time `json:"savedAt"`
}
