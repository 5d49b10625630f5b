package models

import (
	"github.com/samber/lo"
)

// ============================================================
// Units
// ============================================================

// PxPerMM converts physical millimeters to layout pixels.
const PxPerMM = 0.4

// StackGap is the horizontal space in pixels between two neighbouring stacks.
const StackGap = 1.0

// widthEpsilon absorbs float noise from mm→px conversion.
const widthEpsilon = 1e-9

// MMToPx converts millimeters to layout pixels.
func MMToPx(mm float64) float64 { return mm * PxPerMM }

// PxToMM converts layout pixels to millimeters.
func PxToMM(px float64) float64 { return px / PxPerMM }

// ============================================================
// Product types
// ============================================================

type ProductType string

const (
	ProductTypePET   ProductType = "PET"
	ProductTypeCan   ProductType = "CAN"
	ProductTypeTetra ProductType = "TETRA"
	ProductTypeGlass ProductType = "GLASS"
	ProductTypeBlank ProductType = "BLANK"
)

// BlankSpaceSkuID identifies the spacer pseudo-product.
const BlankSpaceSkuID = "blank-space"

// MinBlankWidthMM is the narrowest a blank space may be resized to.
const MinBlankWidthMM = 10.0

// ============================================================
// SKU & Item
// ============================================================

type Constraints struct {
	Stackable bool `json:"stackable"`
	Deletable bool `json:"deletable"`
}

// Sku is an immutable catalog template.
type Sku struct {
	SkuID       string      `json:"skuId"`
	Name        string      `json:"name"`
	WidthMM     float64     `json:"widthMM"`
	HeightMM    float64     `json:"heightMM"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	ImageURL    string      `json:"imageUrl"`
	ProductType ProductType `json:"productType"`
	Constraints Constraints `json:"constraints"`
}

// WithPixels fills the pixel dimensions from the millimeter ones when absent.
func (s Sku) WithPixels() Sku {
	if s.Width == 0 {
		s.Width = MMToPx(s.WidthMM)
	}
	if s.Height == 0 {
		s.Height = MMToPx(s.HeightMM)
	}
	if s.WidthMM == 0 {
		s.WidthMM = PxToMM(s.Width)
	}
	if s.HeightMM == 0 {
		s.HeightMM = PxToMM(s.Height)
	}
	return s
}

// IsBlank reports the blank space pseudo-SKU.
func (s Sku) IsBlank() bool {
	return s.SkuID == BlankSpaceSkuID || s.ProductType == ProductTypeBlank
}

// BlankSpaceSku is the spacer template. Its height is replaced by the
// receiving row's maxHeight on insertion.
func BlankSpaceSku() Sku {
	return Sku{
		SkuID:       BlankSpaceSkuID,
		Name:        "Blank Space",
		WidthMM:     50,
		Width:       MMToPx(50),
		ProductType: ProductTypeBlank,
		Constraints: Constraints{Stackable: false, Deletable: true},
	}
}

// Item is a placed instance of a Sku.
type Item struct {
	ID          string      `json:"id"`
	SkuID       string      `json:"skuId"`
	Name        string      `json:"name"`
	WidthMM     float64     `json:"widthMM"`
	HeightMM    float64     `json:"heightMM"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	ImageURL    string      `json:"imageUrl"`
	ProductType ProductType `json:"productType"`
	Constraints Constraints `json:"constraints"`
	CustomWidth *float64    `json:"customWidth,omitempty"` // mm, blank space only
}

// NewItem places a copy of sku under id.
func NewItem(id string, sku Sku) Item {
	sku = sku.WithPixels()
	return Item{
		ID:          id,
		SkuID:       sku.SkuID,
		Name:        sku.Name,
		WidthMM:     sku.WidthMM,
		HeightMM:    sku.HeightMM,
		Width:       sku.Width,
		Height:      sku.Height,
		ImageURL:    sku.ImageURL,
		ProductType: sku.ProductType,
		Constraints: sku.Constraints,
	}
}

// WithSku swaps the Sku-derived fields and keeps the instance id.
func (i Item) WithSku(sku Sku) Item {
	return NewItem(i.ID, sku)
}

// IsBlank reports a blank space placeholder.
func (i Item) IsBlank() bool {
	return i.SkuID == BlankSpaceSkuID || i.ProductType == ProductTypeBlank
}

func (i Item) Clone() Item {
	if i.CustomWidth != nil {
		w := *i.CustomWidth
		i.CustomWidth = &w
	}
	return i
}

// ============================================================
// Stack
// ============================================================

// Stack is ordered front (index 0, bottom) to top.
type Stack []Item

// Width is the footprint of the stack: the widest member.
func (s Stack) Width() float64 {
	return lo.Max(lo.Map(s, func(it Item, _ int) float64 { return it.Width }))
}

// Height is the sum of member heights.
func (s Stack) Height() float64 {
	return lo.SumBy(s, func(it Item) float64 { return it.Height })
}

// Front is the bottom item, index 0.
func (s Stack) Front() (Item, bool) {
	if len(s) == 0 {
		return Item{}, false
	}
	return s[0], true
}

func (s Stack) Clone() Stack {
	return lo.Map(s, func(it Item, _ int) Item { return it.Clone() })
}

// AllStackable reports whether every member may carry or be carried.
func (s Stack) AllStackable() bool {
	return lo.EveryBy(s, func(it Item) bool { return it.Constraints.Stackable })
}

// ============================================================
// Row
// ============================================================

type Row struct {
	ID                  string       `json:"id"`
	Position            int          `json:"position,omitempty"` // 1-based shelf from the top, 0 when unknown
	Capacity            float64      `json:"capacity"`
	MaxHeight           float64      `json:"maxHeight"`
	Stacks              []Stack      `json:"stacks"`
	AllowedProductTypes AllowedTypes `json:"allowedProductTypes"`
}

// ConsumedWidth is Σ stack footprints plus one StackGap between neighbours.
func (r Row) ConsumedWidth() float64 {
	return ConsumedWidth(lo.Map(r.Stacks, func(s Stack, _ int) float64 { return s.Width() }))
}

// ConsumedWidth sums footprints with the inter-stack gaps.
func ConsumedWidth(footprints []float64) float64 {
	if len(footprints) == 0 {
		return 0
	}
	return lo.Sum(footprints) + StackGap*float64(len(footprints)-1)
}

// FitsWidth reports whether consumed ≤ capacity.
func (r Row) FitsWidth(consumed float64) bool {
	return consumed <= r.Capacity+widthEpsilon
}

// WidthWithNewStack is the consumed width after appending one stack of the given footprint.
func (r Row) WidthWithNewStack(footprint float64) float64 {
	footprints := lo.Map(r.Stacks, func(s Stack, _ int) float64 { return s.Width() })
	return ConsumedWidth(append(footprints, footprint))
}

// FitsHeight reports whether a stack of height fits under the row.
func (r Row) FitsHeight(height float64) bool {
	return height <= r.MaxHeight+widthEpsilon
}

func (r Row) ItemCount() int {
	return lo.SumBy(r.Stacks, func(s Stack) int { return len(s) })
}

func (r Row) Clone() Row {
	r.Stacks = lo.Map(r.Stacks, func(s Stack, _ int) Stack { return s.Clone() })
	r.AllowedProductTypes = r.AllowedProductTypes.Clone()
	return r
}
