package handlers

import (
	"net/http"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/store"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editing actions
// ============================================================

type addRequest struct {
	SkuID      string `json:"skuId"`
	DoorID     string `json:"doorId"`
	RowID      string `json:"rowId"`
	StackIndex int    `json:"stackIndex"`
}

func (h *EditorHandler) AddItem(c fiber.Ctx) error {
	var req addRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	sku, err := h.sku(req.SkuID)
	if err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		item, err := st.AddItemFromSku(sku, req.RowID, req.StackIndex, req.DoorID)
		return item, err
	})
}

type moveRequest struct {
	ItemID     string `json:"itemId"`
	DoorID     string `json:"doorId"`
	RowID      string `json:"rowId"`
	StackIndex int    `json:"stackIndex"`
}

func (h *EditorHandler) MoveItem(c fiber.Ctx) error {
	var req moveRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.MoveItem(req.ItemID, req.RowID, req.StackIndex, req.DoorID)
	})
}

type reorderRequest struct {
	DoorID   string `json:"doorId"`
	RowID    string `json:"rowId"`
	OldIndex int    `json:"oldIndex"`
	NewIndex int    `json:"newIndex"`
}

func (h *EditorHandler) ReorderStack(c fiber.Ctx) error {
	var req reorderRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.ReorderStack(req.RowID, req.OldIndex, req.NewIndex, req.DoorID)
	})
}

type stackRequest struct {
	DraggedID string `json:"draggedId"`
	TargetID  string `json:"targetId"`
}

func (h *EditorHandler) StackItem(c fiber.Ctx) error {
	var req stackRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.StackItem(req.DraggedID, req.TargetID)
	})
}

type duplicateRequest struct {
	Mode string `json:"mode"` // "new" (default) or "stack"
}

func (h *EditorHandler) Duplicate(c fiber.Ctx) error {
	var req duplicateRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	switch req.Mode {
	case "", "new", "stack":
	default:
		return respondError(c, fiber.NewError(http.StatusBadRequest, "mode must be new or stack"))
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		if req.Mode == "stack" {
			return st.DuplicateAndStack()
		}
		return st.DuplicateAndAddNew()
	})
}

type replaceRequest struct {
	SkuID        string `json:"skuId"`
	RulesEnabled *bool  `json:"rulesEnabled"`
}

func (h *EditorHandler) Replace(c fiber.Ctx) error {
	var req replaceRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	sku, err := h.sku(req.SkuID)
	if err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		rules := st.RulesEnabled()
		if req.RulesEnabled != nil {
			rules = *req.RulesEnabled
		}
		return nil, st.ReplaceSelectedItem(sku, rules)
	})
}

type removeRequest struct {
	ItemIDs []string `json:"itemIds"`
}

func (h *EditorHandler) Remove(c fiber.Ctx) error {
	var req removeRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.RemoveItemsByID(req.ItemIDs)
	})
}

type blankWidthRequest struct {
	ItemID  string  `json:"itemId"`
	WidthMM float64 `json:"widthMM"`
}

func (h *EditorHandler) BlankWidth(c fiber.Ctx) error {
	var req blankWidthRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.UpdateBlankWidth(req.ItemID, req.WidthMM)
	})
}

func (h *EditorHandler) Clear(c fiber.Ctx) error {
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.ClearDraft()
	})
}

func (h *EditorHandler) Undo(c fiber.Ctx) error {
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.Undo()
	})
}

func (h *EditorHandler) Redo(c fiber.Ctx) error {
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.Redo()
	})
}

type selectRequest struct {
	ItemID string `json:"itemId"`
}

func (h *EditorHandler) Select(c fiber.Ctx) error {
	var req selectRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.SelectItem(req.ItemID)
	})
}

type doorRequest struct {
	DoorID string `json:"doorId"`
}

func (h *EditorHandler) SwitchDoor(c fiber.Ctx) error {
	var req doorRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		return nil, st.SetCurrentDoor(req.DoorID)
	})
}

type rulesRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *EditorHandler) ToggleRules(c fiber.Ctx) error {
	var req rulesRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.mutate(c, func(st *store.Store, _ *interaction.Controller) (any, error) {
		st.SetRulesEnabled(req.Enabled)
		return nil, nil
	})
}
