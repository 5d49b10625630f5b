package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"planogram-editor/internal/planogram/catalog"
	"planogram-editor/internal/planogram/importer"
	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/session"
	"planogram-editor/internal/planogram/store"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Editor Handler
// ============================================================

// DraftStore is the draft repository as the handlers use it.
type DraftStore interface {
	Load(ctx context.Context, layoutID string) (*persistence.Draft, error)
	Delete(ctx context.Context, layoutID string) error
	List(ctx context.Context) ([]persistence.Summary, error)
}

type EditorHandler struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	drafts   DraftStore
	importer *importer.Converter
	scale    float64
}

func NewEditorHandler(cat *catalog.Catalog, sessions *session.Manager, drafts DraftStore, scale float64) *EditorHandler {
	if scale <= 0 {
		scale = 1
	}
	return &EditorHandler{
		catalog:  cat,
		sessions: sessions,
		drafts:   drafts,
		importer: importer.New(cat),
		scale:    scale,
	}
}

// Register mounts every editor route on r.
func (h *EditorHandler) Register(r fiber.Router) {
	r.Get("/catalog/skus", h.ListSkus)
	r.Get("/catalog/layouts", h.ListLayouts)

	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/:id", h.GetSession)
	r.Delete("/sessions/:id", h.CloseSession)

	actions := r.Group("/sessions/:id/actions")
	actions.Post("/add", h.AddItem)
	actions.Post("/move", h.MoveItem)
	actions.Post("/reorder", h.ReorderStack)
	actions.Post("/stack", h.StackItem)
	actions.Post("/duplicate", h.Duplicate)
	actions.Post("/replace", h.Replace)
	actions.Post("/remove", h.Remove)
	actions.Post("/blank-width", h.BlankWidth)
	actions.Post("/clear", h.Clear)
	actions.Post("/undo", h.Undo)
	actions.Post("/redo", h.Redo)
	actions.Post("/select", h.Select)
	actions.Post("/door", h.SwitchDoor)
	actions.Post("/rules", h.ToggleRules)

	drag := r.Group("/sessions/:id/drag")
	drag.Post("/start", h.DragStart)
	drag.Post("/move", h.DragMove)
	drag.Post("/end", h.DragEnd)
	drag.Post("/cancel", h.DragCancel)

	r.Get("/sessions/:id/export", h.Export)
	r.Get("/sessions/:id/preview.svg", h.Preview)

	r.Post("/import", h.Import)

	r.Get("/drafts", h.ListDrafts)
	r.Get("/drafts/:layoutId", h.GetDraft)
	r.Delete("/drafts/:layoutId", h.DeleteDraft)
}

// ============================================================
// Session view
// ============================================================

type sessionView struct {
	ID            string              `json:"id"`
	LayoutID      string              `json:"layoutId"`
	Refrigerator  models.Refrigerator `json:"refrigerator"`
	HistoryIndex  int                 `json:"historyIndex"`
	HistoryLength int                 `json:"historyLength"`
	CanUndo       bool                `json:"canUndo"`
	CanRedo       bool                `json:"canRedo"`
	SelectedID    string              `json:"selectedId"`
	CurrentDoor   string              `json:"currentDoor"`
	RulesEnabled  bool                `json:"rulesEnabled"`
	DragState     interaction.State   `json:"dragState"`
}

func viewOf(sess *session.Session, st *store.Store, drag *interaction.Controller) sessionView {
	return sessionView{
		ID:            sess.ID,
		LayoutID:      st.LayoutID(),
		Refrigerator:  st.Snapshot(),
		HistoryIndex:  st.HistoryIndex(),
		HistoryLength: st.HistoryLen(),
		CanUndo:       st.CanUndo(),
		CanRedo:       st.CanRedo(),
		SelectedID:    st.SelectedID(),
		CurrentDoor:   st.CurrentDoor(),
		RulesEnabled:  st.RulesEnabled(),
		DragState:     drag.State(),
	}
}

// ============================================================
// Helpers
// ============================================================

var errSessionNotFound = errors.New("session not found")

// session resolves :id and tags the request log with it.
func (h *EditorHandler) session(c fiber.Ctx) (*session.Session, error) {
	id := c.Params("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return nil, errSessionNotFound
	}
	c.Locals("session", id)
	return sess, nil
}

// mutate runs fn on the locked session and answers with the resulting view,
// plus fn's result when non-nil.
func (h *EditorHandler) mutate(c fiber.Ctx, fn func(st *store.Store, drag *interaction.Controller) (any, error)) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}

	var (
		view   sessionView
		result any
	)
	err = sess.Do(func(st *store.Store, drag *interaction.Controller) error {
		var ferr error
		result, ferr = fn(st, drag)
		view = viewOf(sess, st, drag)
		return ferr
	})
	if err != nil {
		return respondError(c, err)
	}
	if result != nil {
		return c.JSON(fiber.Map{"session": view, "result": result})
	}
	return c.JSON(fiber.Map{"session": view})
}

// decode parses an optional JSON body into v.
func decode(c fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	return nil
}

func (h *EditorHandler) sku(id string) (models.Sku, error) {
	sku, ok := h.catalog.Sku(id)
	if !ok {
		return models.Sku{}, fiber.NewError(http.StatusNotFound, "unknown sku "+id)
	}
	return sku, nil
}

// respondError maps domain errors onto HTTP statuses. A rejected edit is a
// conflict with the current layout, not a server fault.
func respondError(c fiber.Ctx, err error) error {
	var (
		fe  *fiber.Error
		amb *importer.AmbiguousLayoutError
	)
	switch {
	case errors.As(err, &amb):
		return c.Status(http.StatusMultipleChoices).JSON(fiber.Map{"error": "choose a layout", "candidates": amb.Candidates, "exact": amb.Exact})
	case store.IsLookupFailure(err):
		reason, _ := store.ReasonOf(err)
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "reason": reason})
	}
	if reason, ok := store.ReasonOf(err); ok {
		var rej *store.RejectionError
		errors.As(err, &rej)
		msg := rej.Message
		if msg == "" {
			msg = string(reason)
		}
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": msg, "reason": reason})
	}
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	case errors.Is(err, errSessionNotFound), errors.Is(err, persistence.ErrNotFound), errors.Is(err, importer.ErrUnknownLayout):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, importer.ErrEmptyPayload):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	log.Errorf("[EDITOR] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
