package importer

import (
	"fmt"
	"math"

	"planogram-editor/internal/planogram/models"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ============================================================
// Converter
// ============================================================

// Catalog is the read side of the Sku and layout catalog.
type Catalog interface {
	Sku(id string) (models.Sku, bool)
	Layout(id string) (models.LayoutData, bool)
	Layouts() []models.LayoutData
}

type SkipReason string

const (
	SkipEmpty        SkipReason = "empty"
	SkipUnknownSku   SkipReason = "unknown-sku"
	SkipNoRow        SkipReason = "no-row"
	SkipWidth        SkipReason = "width-exceeded"
	SkipHeight       SkipReason = "height-exceeded"
	SkipNotStackable SkipReason = "not-stackable"
)

// Skipped records a detected product that was not placed.
type Skipped struct {
	Door    string     `json:"door"`
	Section int        `json:"section"`
	SKUCode string     `json:"skuCode"`
	Reason  SkipReason `json:"reason"`
}

type Result struct {
	Layout       models.LayoutData   `json:"layout"`
	Refrigerator models.Refrigerator `json:"refrigerator"`
	Exact        bool                `json:"exact"`
	Skipped      []Skipped           `json:"skipped"`
}

type Converter struct {
	catalog Catalog
	newID   func() string
}

type Option func(*Converter)

func WithIDGenerator(fn func() string) Option {
	return func(c *Converter) { c.newID = fn }
}

// New creates a converter over catalog.
func New(catalog Catalog, opts ...Option) *Converter {
	c := &Converter{catalog: catalog, newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert picks the template whose row count matches the detected section
// count and fills it. Several exact matches, or several equally close ones
// when none is exact, yield *AmbiguousLayoutError.
func Convert(p Payload, catalog Catalog) (*Result, error) {
	return New(catalog).Convert(p)
}

// ConvertWithLayout fills the given template, skipping the match.
func ConvertWithLayout(p Payload, catalog Catalog, layoutID string) (*Result, error) {
	return New(catalog).ConvertWithLayout(p, layoutID)
}

// Convert matches a template, then fills it.
func (c *Converter) Convert(p Payload) (*Result, error) {
	sections := p.SectionCount()
	if sections == 0 {
		return nil, ErrEmptyPayload
	}
	layout, exact, err := c.match(sections)
	if err != nil {
		return nil, err
	}
	if !exact {
		log.Warnf("[IMPORT] no layout has %d rows, using closest %s (%d rows)", sections, layout.ID, layout.RowCount())
	}
	res := c.fill(p, layout)
	res.Exact = exact
	return res, nil
}

func (c *Converter) ConvertWithLayout(p Payload, layoutID string) (*Result, error) {
	if p.SectionCount() == 0 {
		return nil, ErrEmptyPayload
	}
	layout, ok := c.catalog.Layout(layoutID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, layoutID)
	}
	res := c.fill(p, layout)
	res.Exact = layout.RowCount() == p.SectionCount()
	return res, nil
}

// match returns the chosen layout and whether its row count is exact.
func (c *Converter) match(sections int) (models.LayoutData, bool, error) {
	layouts := c.catalog.Layouts()
	if len(layouts) == 0 {
		return models.LayoutData{}, false, ErrNoLayouts
	}

	distance := func(l models.LayoutData) int { return int(math.Abs(float64(l.RowCount() - sections))) }
	best := lo.Min(lo.Map(layouts, func(l models.LayoutData, _ int) int { return distance(l) }))
	closest := lo.Filter(layouts, func(l models.LayoutData, _ int) bool { return distance(l) == best })

	exact := best == 0
	if len(closest) > 1 {
		return models.LayoutData{}, exact, &AmbiguousLayoutError{
			Sections: sections,
			Exact:    exact,
			Candidates: lo.Map(closest, func(l models.LayoutData, _ int) Candidate {
				return Candidate{ID: l.ID, Name: l.Name, Doors: l.DoorCount(), Rows: l.RowCount()}
			}),
		}
	}
	return closest[0], exact, nil
}

type target struct {
	doorID string
	rowID  string
}

// fill maps the n-th detected section, in door then shelf order, to the
// n-th template row.
func (c *Converter) fill(p Payload, layout models.LayoutData) *Result {
	ref := layout.NewRefrigerator()
	res := &Result{Layout: layout, Refrigerator: ref, Skipped: []Skipped{}}

	var rows []target
	for _, door := range layout.Doors {
		for _, rowID := range ref[door.ID].RowIDs() {
			rows = append(rows, target{doorID: door.ID, rowID: rowID})
		}
	}

	n := 0
	for _, label := range p.DoorLabels() {
		for si, section := range p[label].Sections {
			if n >= len(rows) {
				for _, prod := range section.Products {
					res.skip(label, si, prod, SkipNoRow)
				}
				n++
				continue
			}
			t := rows[n]
			row, _ := ref.Row(t.doorID, t.rowID)
			for _, prod := range section.Products {
				row = c.place(res, row, label, si, prod)
			}
			ref.SetRow(t.doorID, row)
			n++
		}
	}

	placed := len(ref.Items())
	log.Infof("[IMPORT] layout %s: %d items placed, %d skipped", layout.ID, placed, len(res.Skipped))
	return res
}

// place appends the detected stack to row, dropping what does not fit.
func (c *Converter) place(res *Result, row models.Row, door string, section int, prod DetectedProduct) models.Row {
	base, reason := c.item(prod, row)
	if reason != "" {
		res.skip(door, section, prod, reason)
		for _, above := range prod.Stacked {
			res.skip(door, section, above, reason)
		}
		return row
	}
	if !row.FitsWidth(row.WidthWithNewStack(base.Width)) {
		res.skip(door, section, prod, SkipWidth)
		return row
	}
	if !row.FitsHeight(base.Height) {
		res.skip(door, section, prod, SkipHeight)
		return row
	}

	stack := models.Stack{base}
	for _, above := range prod.Stacked {
		item, reason := c.item(above, row)
		switch {
		case reason != "":
		case !base.Constraints.Stackable || !item.Constraints.Stackable || base.IsBlank() || item.IsBlank():
			reason = SkipNotStackable
		case !row.FitsHeight(stack.Height() + item.Height):
			reason = SkipHeight
		case !row.FitsWidth(row.WidthWithNewStack(max(stack.Width(), item.Width))):
			reason = SkipWidth
		}
		if reason != "" {
			res.skip(door, section, above, reason)
			continue
		}
		stack = append(stack, item)
	}

	row.Stacks = append(row.Stacks, stack)
	return row
}

func (c *Converter) item(prod DetectedProduct, row models.Row) (models.Item, SkipReason) {
	if prod.IsEmpty() {
		return models.Item{}, SkipEmpty
	}
	sku, ok := c.catalog.Sku(prod.SKUCode)
	if !ok {
		return models.Item{}, SkipUnknownSku
	}
	item := models.NewItem(c.newID(), sku)
	if item.IsBlank() {
		item.Height = row.MaxHeight
		item.HeightMM = models.PxToMM(row.MaxHeight)
	}
	return item, ""
}

func (r *Result) skip(door string, section int, prod DetectedProduct, reason SkipReason) {
	if reason != SkipEmpty {
		log.Warnf("[IMPORT] %s section %d: skipped %q (%s)", door, section+1, prod.SKUCode, reason)
	}
	r.Skipped = append(r.Skipped, Skipped{Door: door, Section: section, SKUCode: prod.SKUCode, Reason: reason})
}
