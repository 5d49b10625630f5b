package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"planogram-editor/internal/planogram/models"
)

// ============================================================
// Export document
// ============================================================

// ConfidencePlaceholder is emitted for hand-placed products.
const ConfidencePlaceholder = 1.0

type Product struct {
	Product     string      `json:"Product"`
	SKUCode     string      `json:"SKU-Code"`
	Position    string      `json:"Position"`
	StackSize   int         `json:"Stack-Size"`
	Confidence  float64     `json:"Confidence"`
	BoundingBox BoundingBox `json:"Bounding-Box"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
}

type Section struct {
	Position int       `json:"position"`
	Products []Product `json:"products"`
}

type DoorExport struct {
	DoorID   string      `json:"doorId"`
	Sections []Section   `json:"Sections"`
	Polygon  BoundingBox `json:"data"`
	Visible  bool        `json:"Door-Visible"`
}

type Dimensions struct {
	ContentWidth  float64 `json:"contentWidth"`
	ContentHeight float64 `json:"contentHeight"`
	TotalWidth    float64 `json:"totalWidth"`
	TotalHeight   float64 `json:"totalHeight"`
	FrameBorder   float64 `json:"frameBorder"`
	HeaderHeight  float64 `json:"headerHeight"`
	GrilleHeight  float64 `json:"grilleHeight"`
	DoorGap       float64 `json:"doorGap"`
	Scale         float64 `json:"scale"`
}

// Document is keyed by door label ("Door-1", …) next to a "dimensions" block.
type Document struct {
	Doors      map[string]DoorExport
	Order      []string
	Dimensions Dimensions
}

// Export projects ref into the backend document and applies scale as the
// final pass. A non-positive scale is treated as 1.
func Export(ref models.Refrigerator, chrome models.Chrome, scale float64, opts ...Option) *Document {
	doc := FromGeometry(Layout(ref, chrome, opts...))
	if scale <= 0 {
		scale = 1
	}
	doc.Scale(scale)
	return doc
}

// FromGeometry builds the unscaled document. Blank spaces are left out.
func FromGeometry(geo Geometry) *Document {
	doc := &Document{
		Doors: make(map[string]DoorExport, len(geo.Doors)),
		Dimensions: Dimensions{
			ContentWidth:  geo.ContentWidth,
			ContentHeight: geo.ContentHeight,
			TotalWidth:    geo.TotalWidth,
			TotalHeight:   geo.TotalHeight,
			FrameBorder:   geo.Chrome.FrameBorder,
			HeaderHeight:  geo.Chrome.HeaderHeight,
			GrilleHeight:  geo.Chrome.GrilleHeight,
			DoorGap:       geo.Chrome.DoorGap,
			Scale:         1,
		},
	}

	for _, door := range geo.Doors {
		de := DoorExport{
			DoorID:   door.ID,
			Sections: make([]Section, 0, len(door.Rows)),
			Polygon:  door.Outer.Corners(),
			Visible:  true,
		}
		for _, row := range door.Rows {
			section := Section{Position: row.Index + 1, Products: []Product{}}
			for _, p := range row.Items {
				if p.Item.IsBlank() {
					continue
				}
				section.Products = append(section.Products, Product{
					Product:     p.Item.Name,
					SKUCode:     p.Item.SkuID,
					Position:    fmt.Sprintf("%d-%d-%d", row.Index+1, p.Location.StackIndex+1, p.Location.ItemIndex+1),
					StackSize:   p.StackSize,
					Confidence:  ConfidencePlaceholder,
					BoundingBox: p.Box.Corners(),
					Width:       p.Box.Width,
					Height:      p.Box.Height,
				})
			}
			de.Sections = append(de.Sections, section)
		}
		doc.Doors[door.Label] = de
		doc.Order = append(doc.Order, door.Label)
	}
	return doc
}

// Scale multiplies every pixel value in the document by f.
func (d *Document) Scale(f float64) {
	for label, door := range d.Doors {
		door.Polygon = scaleBox(door.Polygon, f)
		for si := range door.Sections {
			for pi := range door.Sections[si].Products {
				p := &door.Sections[si].Products[pi]
				p.BoundingBox = scaleBox(p.BoundingBox, f)
				p.Width *= f
				p.Height *= f
			}
		}
		d.Doors[label] = door
	}

	dim := &d.Dimensions
	dim.ContentWidth *= f
	dim.ContentHeight *= f
	dim.TotalWidth *= f
	dim.TotalHeight *= f
	dim.FrameBorder *= f
	dim.HeaderHeight *= f
	dim.GrilleHeight *= f
	dim.DoorGap *= f
	dim.Scale *= f
}

func scaleBox(b BoundingBox, f float64) BoundingBox {
	for i := range b {
		b[i][0] *= f
		b[i][1] *= f
	}
	return b
}

// ProductCount counts exported products across doors.
func (d *Document) ProductCount() int {
	n := 0
	for _, door := range d.Doors {
		for _, s := range door.Sections {
			n += len(s.Products)
		}
	}
	return n
}

// ============================================================
// JSON
// ============================================================

func (d *Document) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteString("{")
	for _, label := range d.Order {
		data, err := json.Marshal(d.Doors[label])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", label, err)
		}
		b.WriteString(fmt.Sprintf("%q:", label))
		b.Write(data)
		b.WriteString(",")
	}
	dims, err := json.Marshal(d.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("marshal dimensions: %w", err)
	}
	b.WriteString(`"dimensions":`)
	b.Write(dims)
	b.WriteString("}")
	return []byte(b.String()), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Doors = map[string]DoorExport{}
	d.Order = nil
	for key, value := range raw {
		if key == "dimensions" {
			if err := json.Unmarshal(value, &d.Dimensions); err != nil {
				return fmt.Errorf("dimensions: %w", err)
			}
			continue
		}
		var door DoorExport
		if err := json.Unmarshal(value, &door); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		d.Doors[key] = door
		d.Order = append(d.Order, key)
	}
	d.Order = models.SortedIDs(d.Order)
	return nil
}
