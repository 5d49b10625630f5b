package handlers

import (
	"net/http"
	"strconv"

	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/render"
	"planogram-editor/internal/planogram/store"
	"planogram-editor/internal/planogram/transform"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Export & preview
// ============================================================

// Export answers the backend coordinate document for the current layout.
func (h *EditorHandler) Export(c fiber.Ctx) error {
	scale, err := h.scaleParam(c)
	if err != nil {
		return respondError(c, err)
	}
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}

	var doc *transform.Document
	_ = sess.Do(func(st *store.Store, _ *interaction.Controller) error {
		chrome, opts := h.projection(st.LayoutID())
		doc = transform.Export(st.Snapshot(), chrome, scale, opts...)
		return nil
	})
	log.Infof("[EDITOR] export %s: %d products at scale %g", sess.ID, doc.ProductCount(), scale)
	return c.JSON(doc)
}

// Preview renders the current layout as SVG, outlining drop targets while a
// drag is in progress.
func (h *EditorHandler) Preview(c fiber.Ctx) error {
	scale, err := h.scaleParam(c)
	if err != nil {
		return respondError(c, err)
	}
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}

	var (
		geo  transform.Geometry
		opts render.Options
	)
	_ = sess.Do(func(st *store.Store, drag *interaction.Controller) error {
		chrome, projOpts := h.projection(st.LayoutID())
		geo = transform.Layout(st.Snapshot(), chrome, projOpts...)
		opts = render.Options{Scale: scale, SelectedID: st.SelectedID()}
		if drag.State() == interaction.StateDragging {
			opts.ValidRows = drag.Targets().Rows
		}
		return nil
	})

	svg, err := render.NewRenderer(opts).Render(geo)
	if err != nil {
		return respondError(c, fiber.NewError(http.StatusUnprocessableEntity, err.Error()))
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}

func (h *EditorHandler) scaleParam(c fiber.Ctx) (float64, error) {
	raw := c.Query("scale")
	if raw == "" {
		return h.scale, nil
	}
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil || scale <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "scale must be a positive number")
	}
	return scale, nil
}

// projection uses the layout's own chrome and door sizes when it is a
// catalog layout.
func (h *EditorHandler) projection(layoutID string) (models.Chrome, []transform.Option) {
	if layout, ok := h.catalog.Layout(layoutID); ok {
		return layout.ChromeOrDefault(), []transform.Option{transform.WithTemplate(layout)}
	}
	return models.DefaultChrome(), nil
}
