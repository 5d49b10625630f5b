package transform

import (
	"fmt"

	"planogram-editor/internal/planogram/models"

	"github.com/samber/lo"
)

// ============================================================
// Geometry primitives
// ============================================================

type Point [2]float64

// BoundingBox is clockwise from top-left:
// [[xL,yT],[xL,yB],[xR,yB],[xR,yT]].
type BoundingBox [4]Point

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Corners() BoundingBox {
	return BoundingBox{
		{r.X, r.Y},
		{r.X, r.Bottom()},
		{r.Right(), r.Bottom()},
		{r.Right(), r.Y},
	}
}

// ============================================================
// Layout geometry
// ============================================================

type ItemPlacement struct {
	Item      models.Item     `json:"item"`
	Location  models.Location `json:"location"`
	StackSize int             `json:"stackSize"`
	Box       Rect            `json:"box"`
}

type RowGeometry struct {
	ID    string          `json:"id"`
	Index int             `json:"index"`
	Box   Rect            `json:"box"`
	Items []ItemPlacement `json:"items"`
}

type DoorGeometry struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Outer   Rect          `json:"outer"`   // frame included
	Content Rect          `json:"content"` // shelf area
	Rows    []RowGeometry `json:"rows"`
}

type Geometry struct {
	Chrome        models.Chrome  `json:"chrome"`
	Doors         []DoorGeometry `json:"doors"`
	ContentWidth  float64        `json:"contentWidth"`
	ContentHeight float64        `json:"contentHeight"`
	TotalWidth    float64        `json:"totalWidth"`
	TotalHeight   float64        `json:"totalHeight"`
}

// Option adjusts a projection.
type Option func(*options)

type options struct {
	doors map[string]doorSize
}

type doorSize struct {
	width, height float64
}

// WithTemplate sizes each door's content area from the layout template.
// Rows still decide when they need more room than the template gives.
func WithTemplate(layout models.LayoutData) Option {
	return func(o *options) {
		for _, door := range layout.Doors {
			o.doors[door.ID] = doorSize{width: door.Width, height: door.Height}
		}
	}
}

// DoorLabel is the export key for the n-th door (0-based).
func DoorLabel(n int) string { return fmt.Sprintf("Door-%d", n+1) }

// Layout places every door, row and item in unscaled pixel space. It uses
// the same constants as the on-screen renderer:
//
//	content size = template door size, or the rows' extent when larger
//	door offset  = frame + Σ(prev content width + 2·frame + gap)
//	row top      = frame + header + Σ(prev row maxHeight)
//	stack left   = door offset + Σ(prev footprint + StackGap)
//	items        bottom-aligned, centred in the stack footprint
func Layout(ref models.Refrigerator, chrome models.Chrome, opts ...Option) Geometry {
	o := options{doors: map[string]doorSize{}}
	for _, opt := range opts {
		opt(&o)
	}

	geo := Geometry{Chrome: chrome}
	doorIDs := ref.DoorIDs()

	offset := chrome.FrameBorder
	for n, doorID := range doorIDs {
		door := ref[doorID]
		size := o.doors[doorID]
		width := max(door.ContentWidth(), size.width)
		height := max(door.ContentHeight(), size.height)

		dg := DoorGeometry{
			ID:      doorID,
			Label:   DoorLabel(n),
			Content: Rect{X: offset, Y: chrome.FrameBorder + chrome.HeaderHeight, Width: width, Height: height},
		}

		rowTop := chrome.FrameBorder + chrome.HeaderHeight
		for ri, rowID := range door.RowIDs() {
			row := door[rowID]
			rg := RowGeometry{ID: rowID, Index: ri, Box: Rect{X: offset, Y: rowTop, Width: row.Capacity, Height: row.MaxHeight}}
			rg.Items = placeRow(doorID, row, offset, rowTop)
			dg.Rows = append(dg.Rows, rg)
			rowTop += row.MaxHeight
		}

		geo.Doors = append(geo.Doors, dg)
		geo.ContentWidth += width
		geo.ContentHeight = max(geo.ContentHeight, height)
		offset += width + 2*chrome.FrameBorder + chrome.DoorGap
	}

	geo.TotalWidth = lo.SumBy(geo.Doors, func(d DoorGeometry) float64 { return d.Content.Width + 2*chrome.FrameBorder })
	if len(geo.Doors) > 1 {
		geo.TotalWidth += chrome.DoorGap * float64(len(geo.Doors)-1)
	}
	geo.TotalHeight = geo.ContentHeight + chrome.HeaderHeight + chrome.GrilleHeight + 2*chrome.FrameBorder

	for i := range geo.Doors {
		d := &geo.Doors[i]
		d.Outer = Rect{X: d.Content.X - chrome.FrameBorder, Y: 0, Width: d.Content.Width + 2*chrome.FrameBorder, Height: geo.TotalHeight}
	}
	return geo
}

func placeRow(doorID string, row models.Row, left, top float64) []ItemPlacement {
	var out []ItemPlacement
	bottom := top + row.MaxHeight
	x := left

	for si, stack := range row.Stacks {
		footprint := stack.Width()
		below := 0.0
		for ii, item := range stack {
			box := Rect{
				X:      x + (footprint-item.Width)/2,
				Y:      bottom - below - item.Height,
				Width:  item.Width,
				Height: item.Height,
			}
			out = append(out, ItemPlacement{
				Item:      item,
				Location:  models.Location{DoorID: doorID, RowID: row.ID, StackIndex: si, ItemIndex: ii},
				StackSize: len(stack),
				Box:       box,
			})
			below += item.Height
		}
		x += footprint + models.StackGap
	}
	return out
}
