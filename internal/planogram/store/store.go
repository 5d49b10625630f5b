package store

import (
	"fmt"

	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/validation"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"
)

// ============================================================
// Store
// ============================================================

// State is what the store exposes to persistence. History entries are
// shared and must be treated as read-only.
type State struct {
	LayoutID     string                `json:"layoutId"`
	Refrigerator models.Refrigerator   `json:"refrigerator"`
	History      []models.Refrigerator `json:"history"`
	HistoryIndex int                   `json:"historyIndex"`
}

// Store owns the active layout, the selection and the undo history. It is
// not safe for concurrent use; callers serialize access.
type Store struct {
	layoutID    string
	history     *history
	selectedID  string
	currentDoor string

	policy       validation.Policy
	rulesEnabled bool
	newID        func() string
	onCommit     []func(State)
}

type Option func(*Store)

func WithPolicy(p validation.Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithRulesEnabled(enabled bool) Option {
	return func(s *Store) { s.rulesEnabled = enabled }
}

// WithIDGenerator replaces uuid item ids (tests use sequential ids).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// OnCommit registers a hook fired after every mutation, undo and redo.
// Hooks must not block.
func OnCommit(fn func(State)) Option {
	return func(s *Store) { s.onCommit = append(s.onCommit, fn) }
}

// New starts a store with ref as the only history entry.
func New(layoutID string, ref models.Refrigerator, opts ...Option) *Store {
	s := &Store{
		layoutID:     layoutID,
		history:      newHistory(ref.Clone()),
		policy:       validation.DefaultPolicy(),
		rulesEnabled: true,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if ids := ref.DoorIDs(); len(ids) > 0 {
		s.currentDoor = ids[0]
	}
	return s
}

// Restore rebuilds a store from a persisted draft.
func Restore(state State, opts ...Option) (*Store, error) {
	if len(state.History) == 0 {
		state.History = []models.Refrigerator{state.Refrigerator}
		state.HistoryIndex = 0
	}
	if state.HistoryIndex < 0 || state.HistoryIndex >= len(state.History) {
		return nil, fmt.Errorf("restore %s: history index %d out of range [0,%d)", state.LayoutID, state.HistoryIndex, len(state.History))
	}
	if violations := state.History[state.HistoryIndex].CheckInvariants(); len(violations) > 0 {
		return nil, fmt.Errorf("restore %s: corrupt snapshot: %s", state.LayoutID, violations[0])
	}

	s := New(state.LayoutID, state.History[0], opts...)
	s.history.entries = make([]models.Refrigerator, 0, len(state.History))
	for _, entry := range state.History {
		s.history.entries = append(s.history.entries, entry.Clone())
	}
	s.history.index = state.HistoryIndex
	if drop := len(s.history.entries) - MaxHistory; drop > 0 {
		s.history.entries = s.history.entries[drop:]
		s.history.index = max(0, s.history.index-drop)
	}
	if ids := s.current().DoorIDs(); len(ids) > 0 {
		s.currentDoor = ids[0]
	}
	return s, nil
}

// ============================================================
// Accessors
// ============================================================

func (s *Store) LayoutID() string { return s.layoutID }

// Snapshot returns a deep copy of the current layout.
func (s *Store) Snapshot() models.Refrigerator { return s.current().Clone() }

// State is the persistable form of the store.
func (s *Store) State() State {
	return State{
		LayoutID:     s.layoutID,
		Refrigerator: s.current(),
		History:      append([]models.Refrigerator(nil), s.history.entries...),
		HistoryIndex: s.history.index,
	}
}

func (s *Store) HistoryIndex() int { return s.history.index }
func (s *Store) HistoryLen() int   { return len(s.history.entries) }
func (s *Store) CanUndo() bool     { return s.history.canUndo() }
func (s *Store) CanRedo() bool     { return s.history.canRedo() }

func (s *Store) SelectedID() string { return s.selectedID }
func (s *Store) CurrentDoor() string {
	return s.currentDoor
}

func (s *Store) Policy() validation.Policy { return s.policy }
func (s *Store) RulesEnabled() bool        { return s.rulesEnabled }

func (s *Store) SetRulesEnabled(enabled bool) { s.rulesEnabled = enabled }

// SetCurrentDoor changes which door actions with an empty door id address.
func (s *Store) SetCurrentDoor(doorID string) error {
	if _, ok := s.current()[doorID]; !ok {
		return reject(ReasonDoorNotFound, "door %s not found", doorID)
	}
	s.currentDoor = doorID
	return nil
}

// ConsumedWidth reports Σ footprints + gaps for a row.
func (s *Store) ConsumedWidth(doorID, rowID string) (float64, error) {
	row, err := s.row(s.current(), doorID, rowID)
	if err != nil {
		return 0, err
	}
	return row.ConsumedWidth(), nil
}

// ============================================================
// Selection
// ============================================================

// SelectItem sets or clears (empty id) the selection. Not recorded in history.
func (s *Store) SelectItem(itemID string) error {
	if itemID == "" {
		s.selectedID = ""
		return nil
	}
	if _, ok := s.current().Locate(itemID); !ok {
		return s.lookupFailed(reject(ReasonItemNotFound, "item %s not found", itemID))
	}
	s.selectedID = itemID
	return nil
}

// ============================================================
// Undo / Redo
// ============================================================

// Undo steps back one history entry.
func (s *Store) Undo() error {
	if !s.history.undo() {
		return reject(ReasonHistoryBoundary, "Nothing to undo")
	}
	s.dropStaleSelection()
	s.notify()
	return nil
}

// Redo steps forward one history entry.
func (s *Store) Redo() error {
	if !s.history.redo() {
		return reject(ReasonHistoryBoundary, "Nothing to redo")
	}
	s.dropStaleSelection()
	s.notify()
	return nil
}

// ============================================================
// Internals
// ============================================================

func (s *Store) current() models.Refrigerator { return s.history.current() }

// commit pushes next as the new current snapshot. next must be a fresh value
// that nobody else references.
func (s *Store) commit(action string, next models.Refrigerator) {
	s.history.push(next)
	s.dropStaleSelection()
	log.Debugf("[STORE] %s: %s committed (history %d/%d)", s.layoutID, action, s.history.index+1, len(s.history.entries))
	s.notify()
}

func (s *Store) notify() {
	if len(s.onCommit) == 0 {
		return
	}
	state := s.State()
	for _, fn := range s.onCommit {
		fn(state)
	}
}

func (s *Store) dropStaleSelection() {
	if s.selectedID == "" {
		return
	}
	if _, ok := s.current().Locate(s.selectedID); !ok {
		s.selectedID = ""
	}
}

func (s *Store) resolveDoor(doorID string) string {
	if doorID == "" {
		return s.currentDoor
	}
	return doorID
}

func (s *Store) row(ref models.Refrigerator, doorID, rowID string) (models.Row, error) {
	doorID = s.resolveDoor(doorID)
	row, ok := ref.Row(doorID, rowID)
	if !ok {
		return models.Row{}, s.lookupFailed(reject(ReasonRowNotFound, "row %s not found in door %s", rowID, doorID))
	}
	return row, nil
}

func (s *Store) lookupFailed(err *RejectionError) error {
	log.Warnf("[STORE] %s: %v", s.layoutID, err)
	return err
}

func (s *Store) rejected(action string, err *RejectionError) error {
	log.Debugf("[STORE] %s: %s rejected: %v", s.layoutID, action, err)
	return err
}
