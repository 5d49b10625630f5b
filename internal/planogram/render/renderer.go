package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/transform"
	"planogram-editor/internal/planogram/validation"
)

// ============================================================
// Renderer
// ============================================================

type Options struct {
	Scale      float64
	SelectedID string
	// ValidRows, when set, outlines drop targets of an active drag.
	ValidRows map[validation.RowKey]bool
}

var typeFill = map[models.ProductType]string{
	models.ProductTypePET:   "#8ecae6",
	models.ProductTypeCan:   "#ffb703",
	models.ProductTypeTetra: "#90be6d",
	models.ProductTypeGlass: "#cdb4db",
}

type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer; a zero Scale means 1.
func NewRenderer(opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{opts: opts}
}

// Render draws the projected layout as a standalone SVG document.
func (r *Renderer) Render(geo transform.Geometry) (string, error) {
	if len(geo.Doors) == 0 {
		return "", fmt.Errorf("layout has no doors")
	}

	width := geo.TotalWidth * r.opts.Scale
	height := geo.TotalHeight * r.opts.Scale

	var elements []string
	for _, door := range geo.Doors {
		elements = append(elements, r.renderDoor(door, geo.Chrome)...)
		elements = append(elements, r.renderRows(door)...)
		elements = append(elements, r.renderItems(door)...)
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(geo.TotalWidth), formatFloat(geo.TotalHeight)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderDoor(door transform.DoorGeometry, chrome models.Chrome) []string {
	o := door.Outer
	grilleTop := door.Content.Bottom()
	return []string{
		fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" rx="6" fill="#e9ecef" stroke="#495057" stroke-width="2" />`,
			escape(door.ID), formatFloat(o.X), formatFloat(o.Y), formatFloat(o.Width), formatFloat(o.Height)),
		fmt.Sprintf(`<text x="%s" y="%s" font-size="20" text-anchor="middle" fill="#212529">%s</text>`,
			formatFloat(o.X+o.Width/2), formatFloat(chrome.FrameBorder+chrome.HeaderHeight/2), escape(door.Label)),
		fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="#adb5bd" />`,
			formatFloat(door.Content.X), formatFloat(grilleTop), formatFloat(door.Content.Width), formatFloat(chrome.GrilleHeight)),
	}
}

func (r *Renderer) renderRows(door transform.DoorGeometry) []string {
	var out []string

	for _, row := range door.Rows {
		b := row.Box
		stroke := "#ced4da"
		if r.opts.ValidRows != nil && r.opts.ValidRows[validation.RowKey{DoorID: door.ID, RowID: row.ID}] {
			stroke = "#2b9348"
		}
		out = append(out, fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="#fff" stroke="%s" />`,
			escape(door.ID+"/"+row.ID), formatFloat(b.X), formatFloat(b.Y), formatFloat(b.Width), formatFloat(b.Height), stroke))
		out = append(out, fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#6c757d" stroke-width="2" />`,
			formatFloat(b.X), formatFloat(b.Bottom()), formatFloat(b.Right()), formatFloat(b.Bottom())))
	}

	return out
}

func (r *Renderer) renderItems(door transform.DoorGeometry) []string {
	var out []string

	for _, row := range door.Rows {
		for _, p := range row.Items {
			b := p.Box
			attrs := fmt.Sprintf(`fill="%s" stroke="#343a40"`, fillFor(p.Item))
			if p.Item.IsBlank() {
				attrs = `fill="none" stroke="#adb5bd" stroke-dasharray="4 2"`
			}
			if p.Item.ID == r.opts.SelectedID {
				attrs += ` stroke-width="3"`
			}
			out = append(out, fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" %s><title>%s</title></rect>`,
				escape(p.Item.ID), formatFloat(b.X), formatFloat(b.Y), formatFloat(b.Width), formatFloat(b.Height), attrs, escape(p.Item.Name)))
		}
	}

	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func fillFor(item models.Item) string {
	if fill, ok := typeFill[item.ProductType]; ok {
		return fill
	}
	return "#dee2e6"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
