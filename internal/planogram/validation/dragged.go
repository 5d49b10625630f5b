package validation

import (
	"planogram-editor/internal/planogram/models"

	"github.com/samber/lo"
)

// ============================================================
// Dragged item metadata
// ============================================================

// RowKey addresses a row across doors.
type RowKey struct {
	DoorID string `json:"doorId"`
	RowID  string `json:"rowId"`
}

func (k RowKey) String() string { return k.DoorID + "/" + k.RowID }

// Dragged describes what a gesture carries. Moving into a row carries the
// single item; stacking carries the whole stack the item belongs to.
type Dragged struct {
	ItemID string           `json:"itemId,omitempty"`
	Origin *models.Location `json:"origin,omitempty"`

	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StackWidth  float64 `json:"stackWidth"`
	StackHeight float64 `json:"stackHeight"`

	ProductType  models.ProductType   `json:"productType"`
	ProductTypes []models.ProductType `json:"productTypes"`
	Stackable    bool                 `json:"stackable"`
	Blank        bool                 `json:"blank"`
}

// FromSku describes a palette drag of a catalog template.
func FromSku(sku models.Sku) Dragged {
	sku = sku.WithPixels()
	return Dragged{
		Width:        sku.Width,
		Height:       sku.Height,
		StackWidth:   sku.Width,
		StackHeight:  sku.Height,
		ProductType:  sku.ProductType,
		ProductTypes: []models.ProductType{sku.ProductType},
		Stackable:    sku.Constraints.Stackable && !sku.IsBlank(),
		Blank:        sku.IsBlank(),
	}
}

// FromItem describes dragging an already placed item.
func FromItem(ref models.Refrigerator, itemID string) (Dragged, bool) {
	loc, ok := ref.Locate(itemID)
	if !ok {
		return Dragged{}, false
	}
	item, _ := ref.Item(loc)
	row, _ := ref.Row(loc.DoorID, loc.RowID)
	stack := row.Stacks[loc.StackIndex]

	return Dragged{
		ItemID:       itemID,
		Origin:       &loc,
		Width:        item.Width,
		Height:       item.Height,
		StackWidth:   stack.Width(),
		StackHeight:  stack.Height(),
		ProductType:  item.ProductType,
		ProductTypes: lo.Uniq(lo.Map(stack, func(it models.Item, _ int) models.ProductType { return it.ProductType })),
		Stackable:    stack.AllStackable() && !item.IsBlank(),
		Blank:        item.IsBlank(),
	}, true
}

func (d Dragged) fromRow(doorID, rowID string) bool {
	return d.Origin != nil && d.Origin.DoorID == doorID && d.Origin.RowID == rowID
}

func (d Dragged) fromStack(doorID, rowID string, stackIndex int) bool {
	return d.fromRow(doorID, rowID) && d.Origin.StackIndex == stackIndex
}

// acceptedBy checks the single dragged item against the row's type rule.
func (d Dragged) acceptedBy(row models.Row) bool {
	return d.Blank || row.AllowedProductTypes.Allows(d.ProductType)
}

// stackAcceptedBy checks every product type of the dragged stack.
func (d Dragged) stackAcceptedBy(row models.Row) bool {
	if d.Blank {
		return true
	}
	types := d.ProductTypes
	if len(types) == 0 {
		types = []models.ProductType{d.ProductType}
	}
	return lo.EveryBy(types, row.AllowedProductTypes.Allows)
}
