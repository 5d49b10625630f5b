package handlers

import (
	"context"
	"errors"
	"net/http"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/session"
	"planogram-editor/internal/planogram/store"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Catalog
// ============================================================

func (h *EditorHandler) ListSkus(c fiber.Ctx) error {
	return c.JSON(h.catalog.Skus())
}

func (h *EditorHandler) ListLayouts(c fiber.Ctx) error {
	return c.JSON(h.catalog.Layouts())
}

// ============================================================
// Sessions
// ============================================================

type createSessionRequest struct {
	LayoutID     string `json:"layoutId"`
	RestoreDraft bool   `json:"restoreDraft"`
}

// CreateSession opens an editor on a catalog layout, or on its saved draft
// when restoreDraft is set. A fresh session reports whether a draft exists
// so the client can offer to restore it.
func (h *EditorHandler) CreateSession(c fiber.Ctx) error {
	var req createSessionRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.LayoutID == "" {
		return respondError(c, fiber.NewError(http.StatusBadRequest, "layoutId required"))
	}

	ctx := context.Background()
	if req.RestoreDraft {
		draft, err := h.drafts.Load(ctx, req.LayoutID)
		if err != nil {
			return respondError(c, err)
		}
		sess, err := h.sessions.Restore(*draft)
		if err != nil {
			log.Warnf("[EDITOR] draft %s unusable: %v", req.LayoutID, err)
			return respondError(c, fiber.NewError(http.StatusUnprocessableEntity, "draft is corrupt"))
		}
		return h.created(c, sess, false)
	}

	layout, ok := h.catalog.Layout(req.LayoutID)
	if !ok {
		return respondError(c, fiber.NewError(http.StatusNotFound, "unknown layout "+req.LayoutID))
	}

	draftAvailable := false
	if _, err := h.drafts.Load(ctx, req.LayoutID); err == nil {
		draftAvailable = true
	} else if !errors.Is(err, persistence.ErrNotFound) {
		log.Errorf("[DRAFTS] check %s: %v", req.LayoutID, err)
	}

	sess := h.sessions.Open(layout.ID, layout.NewRefrigerator())
	return h.created(c, sess, draftAvailable)
}

func (h *EditorHandler) created(c fiber.Ctx, sess *session.Session, draftAvailable bool) error {
	var view sessionView
	_ = sess.Do(func(st *store.Store, drag *interaction.Controller) error {
		view = viewOf(sess, st, drag)
		return nil
	})
	return c.Status(http.StatusCreated).JSON(fiber.Map{"session": view, "draftAvailable": draftAvailable})
}

func (h *EditorHandler) GetSession(c fiber.Ctx) error {
	return h.mutate(c, func(*store.Store, *interaction.Controller) (any, error) { return nil, nil })
}

func (h *EditorHandler) CloseSession(c fiber.Ctx) error {
	if !h.sessions.Close(c.Params("id")) {
		return respondError(c, errSessionNotFound)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Drafts
// ============================================================

func (h *EditorHandler) ListDrafts(c fiber.Ctx) error {
	list, err := h.drafts.List(context.Background())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *EditorHandler) GetDraft(c fiber.Ctx) error {
	draft, err := h.drafts.Load(context.Background(), c.Params("layoutId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(draft)
}

// DeleteDraft dismisses a draft the user chose not to restore.
func (h *EditorHandler) DeleteDraft(c fiber.Ctx) error {
	if err := h.drafts.Delete(context.Background(), c.Params("layoutId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
