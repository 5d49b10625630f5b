package persistence

import (
	"context"
	"sync"
	"time"

	"planogram-editor/internal/common/deferred"
	"planogram-editor/internal/planogram/store"

	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Auto-saver
// ============================================================

// DefaultDebounce is the quiet period before a draft is written.
const DefaultDebounce = time.Second

const saveTimeout = 5 * time.Second

type Saver interface {
	Save(ctx context.Context, d Draft) error
}

// AutoSaver writes the latest store state once edits go quiet. Save errors
// are logged and counted, never returned to the editing path.
type AutoSaver struct {
	saver Saver
	task  *deferred.Task
	now   func() time.Time

	mu       sync.Mutex
	failures int
	saved    int
}

// NewAutoSaver uses time.Now when now is nil.
func NewAutoSaver(saver Saver, debounce time.Duration, now func() time.Time) *AutoSaver {
	if now == nil {
		now = time.Now
	}
	return &AutoSaver{saver: saver, task: deferred.NewTask(debounce), now: now}
}

// Schedule replaces any pending save with state.
func (a *AutoSaver) Schedule(state store.State) {
	a.task.Schedule(func() { a.save(state) })
}

// Hook adapts the saver to store.OnCommit.
func (a *AutoSaver) Hook() store.Option {
	return store.OnCommit(a.Schedule)
}

// Flush writes a pending draft immediately.
func (a *AutoSaver) Flush() { a.task.Flush() }

// Cancel drops a pending draft, e.g. after the user dismissed it.
func (a *AutoSaver) Cancel() { a.task.Cancel() }

func (a *AutoSaver) Pending() bool { return a.task.Pending() }

func (a *AutoSaver) Stats() (saved, failures int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved, a.failures
}

func (a *AutoSaver) save(state store.State) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err := a.saver.Save(ctx, NewDraft(state, a.now()))

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.failures++
		log.Errorf("[DRAFTS] autosave %s failed: %v", state.LayoutID, err)
		return
	}
	a.saved++
	log.Debugf("[DRAFTS] %s saved (history %d/%d)", state.LayoutID, state.HistoryIndex+1, len(state.History))
}
