package handlers

import (
	"net/http"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/store"
	"planogram-editor/internal/planogram/validation"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Drag gestures
// ============================================================

type dragStartRequest struct {
	ItemID string `json:"itemId"`
	SkuID  string `json:"skuId"`
}

type dragStartResponse struct {
	Targets validation.DropTargets `json:"targets"`
	Dragged validation.Dragged     `json:"dragged"`
}

// DragStart computes drop targets once for the whole gesture. Exactly one
// of itemId (placed item) or skuId (palette) must be given.
func (h *EditorHandler) DragStart(c fiber.Ctx) error {
	var req dragStartRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	if (req.ItemID == "") == (req.SkuID == "") {
		return respondError(c, fiber.NewError(http.StatusBadRequest, "itemId or skuId required"))
	}

	return h.mutate(c, func(st *store.Store, drag *interaction.Controller) (any, error) {
		if req.SkuID != "" {
			sku, err := h.sku(req.SkuID)
			if err != nil {
				return nil, err
			}
			targets := drag.StartSku(st.Snapshot(), sku, st.RulesEnabled())
			return dragStartResponse{Targets: targets, Dragged: drag.Dragged()}, nil
		}
		targets, err := drag.StartItem(st.Snapshot(), req.ItemID, st.RulesEnabled())
		if err != nil {
			return nil, store.ErrItemNotFound
		}
		return dragStartResponse{Targets: targets, Dragged: drag.Dragged()}, nil
	})
}

type dragMoveResponse struct {
	Indicator interaction.Indicator `json:"indicator"`
	Changed   bool                  `json:"changed"`
}

func (h *EditorHandler) DragMove(c fiber.Ctx) error {
	var hover interaction.Hover
	if err := decode(c, &hover); err != nil {
		return respondError(c, err)
	}
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}

	var resp dragMoveResponse
	_ = sess.Do(func(_ *store.Store, drag *interaction.Controller) error {
		resp.Indicator, resp.Changed = drag.Move(hover)
		return nil
	})
	return c.JSON(resp)
}

type dragEndRequest struct {
	Hover *interaction.Hover `json:"hover"`
}

// DragEnd dispatches the gesture's single action. A rejected drop answers
// 409 and leaves the layout untouched.
func (h *EditorHandler) DragEnd(c fiber.Ctx) error {
	var req dragEndRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, drag *interaction.Controller) (any, error) {
		return drag.End(req.Hover, st)
	})
}

func (h *EditorHandler) DragCancel(c fiber.Ctx) error {
	return h.mutate(c, func(_ *store.Store, drag *interaction.Controller) (any, error) {
		drag.Cancel()
		return nil, nil
	})
}
