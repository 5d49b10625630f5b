package session

import (
	"sync"
	"sync/atomic"
	"time"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/store"
	"planogram-editor/internal/planogram/validation"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"
)

// ============================================================
// Session
// ============================================================

// Session is one open editor: the store, its drag controller and the
// draft auto-saver. All access goes through Do.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	now      func() time.Time
	lastUsed atomic.Int64 // unix nanos

	mu    sync.Mutex
	store *store.Store
	drag  *interaction.Controller
	saver *persistence.AutoSaver
}

// Do runs fn with the session locked.
func (s *Session) Do(fn func(st *store.Store, drag *interaction.Controller) error) error {
	s.touch(s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store, s.drag)
}

// DiscardDraft drops a pending auto-save.
func (s *Session) DiscardDraft() {
	if s.saver != nil {
		s.saver.Cancel()
	}
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

func (s *Session) flush() {
	if s.saver != nil {
		s.saver.Flush()
	}
}

// ============================================================
// Session Manager
// ============================================================

type Config struct {
	Policy           validation.Policy
	RulesEnabled     bool
	DragThrottle     time.Duration
	AutosaveDebounce time.Duration
	// IdleTimeout expires sessions untouched for longer; zero keeps them until closed.
	IdleTimeout time.Duration
	// Saver receives drafts; nil disables auto-save.
	Saver persistence.Saver
}

type Manager struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session on a fresh or imported layout.
func (m *Manager) Open(layoutID string, ref models.Refrigerator) *Session {
	sess, opts := m.prepare()
	sess.store = store.New(layoutID, ref, opts...)
	return m.register(sess)
}

// Restore starts a session from a saved draft.
func (m *Manager) Restore(d persistence.Draft) (*Session, error) {
	sess, opts := m.prepare()
	st, err := store.Restore(d.State, opts...)
	if err != nil {
		return nil, err
	}
	sess.store = st
	return m.register(sess), nil
}

// Get looks up an open session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if ok {
		sess.touch(m.now())
	}
	return sess, ok
}

// Close flushes the session's draft and forgets it.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		sess.flush()
		log.Infof("[EDITOR] session %s closed", id)
	}
	return ok
}

// Shutdown flushes every pending draft.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.flush()
	}
	log.Infof("[EDITOR] flushed %d sessions", len(sessions))
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweepIdle closes sessions idle past the timeout, flushing their drafts.
func (m *Manager) sweepIdle() {
	if m.cfg.IdleTimeout <= 0 {
		return
	}
	now := m.now()

	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.idleSince(now) > m.cfg.IdleTimeout {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.flush()
		log.Infof("[EDITOR] session %s expired after %s idle", sess.ID, m.cfg.IdleTimeout)
	}
}

func (m *Manager) prepare() (*Session, []store.Option) {
	m.sweepIdle()

	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		now:       m.now,
		drag:      interaction.New(m.cfg.DragThrottle, nil, m.cfg.Policy),
	}
	opts := []store.Option{
		store.WithPolicy(m.cfg.Policy),
		store.WithRulesEnabled(m.cfg.RulesEnabled),
	}
	if m.cfg.Saver != nil {
		sess.saver = persistence.NewAutoSaver(m.cfg.Saver, m.cfg.AutosaveDebounce, nil)
		opts = append(opts, sess.saver.Hook())
	}
	sess.touch(now)
	return sess, opts
}

func (m *Manager) register(sess *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sess.ID] = sess
	log.Infof("[EDITOR] session %s opened on %s", sess.ID, sess.store.LayoutID())
	return sess
}
