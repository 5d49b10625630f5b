package transform

import (
	"encoding/json"
	"testing"

	"planogram-editor/internal/planogram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChrome = models.Chrome{FrameBorder: 10, HeaderHeight: 20, GrilleHeight: 5, DoorGap: 4}

func it(id string, w, h float64) models.Item {
	return models.Item{ID: id, SkuID: "sku-" + id, Name: "Product " + id, Width: w, Height: h, ProductType: models.ProductTypeCan}
}

func door(rows ...models.Row) models.Door {
	d := models.Door{}
	for _, r := range rows {
		d[r.ID] = r
	}
	return d
}

func TestExport_SingleItemBoundingBoxRoundTrip(t *testing.T) {
	ref := models.Refrigerator{"door-1": door(
		models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50},
		models.Row{ID: "row-2", Capacity: 100, MaxHeight: 80, Stacks: []models.Stack{{it("a", 30, 40)}}},
	)}

	doc := Export(ref, testChrome, 2)
	section := doc.Doors["Door-1"].Sections[1]
	require.Len(t, section.Products, 1)
	p := section.Products[0]

	assert.Equal(t, BoundingBox{{20, 240}, {20, 320}, {80, 320}, {80, 240}}, p.BoundingBox)
	assert.Equal(t, 30.0*2, p.BoundingBox[2][0]-p.BoundingBox[0][0])
	assert.Equal(t, 40.0*2, p.BoundingBox[1][1]-p.BoundingBox[0][1])
	assert.Equal(t, 60.0, p.Width)
	assert.Equal(t, 80.0, p.Height)
	assert.Equal(t, "2-1-1", p.Position)
	assert.Equal(t, "sku-a", p.SKUCode)
	assert.Equal(t, 2, section.Position)

	assert.Equal(t, 240.0, doc.Dimensions.TotalWidth)
	assert.Equal(t, 350.0, doc.Dimensions.TotalHeight)
	assert.Equal(t, 2.0, doc.Dimensions.Scale)
}

func TestLayout_StackIsBottomAligned(t *testing.T) {
	ref := models.Refrigerator{"door-1": door(
		models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50, Stacks: []models.Stack{{it("front", 20, 30), it("top", 20, 20)}}},
	)}

	geo := Layout(ref, testChrome)
	items := geo.Doors[0].Rows[0].Items
	require.Len(t, items, 2)

	y0, h := 30.0, 50.0
	assert.Equal(t, y0+h, items[0].Box.Bottom())
	assert.Equal(t, y0+h-30, items[1].Box.Bottom())
	assert.Equal(t, items[0].Box.Y, items[1].Box.Bottom(), "touching, no gap")
}

func TestLayout_StacksSeparatedByOnePixel(t *testing.T) {
	ref := models.Refrigerator{"door-1": door(
		models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50, Stacks: []models.Stack{{it("a", 10, 10)}, {it("b", 20, 10)}, {it("c", 30, 10)}}},
	)}

	items := Layout(ref, testChrome).Doors[0].Rows[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, 10.0, items[0].Box.X)
	assert.Equal(t, 21.0, items[1].Box.X)
	assert.Equal(t, 42.0, items[2].Box.X)
	assert.Equal(t, 62.0, items[2].Box.Right()-items[0].Box.X)
}

func TestLayout_NarrowItemCentredOnWideFootprint(t *testing.T) {
	ref := models.Refrigerator{"door-1": door(
		models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50, Stacks: []models.Stack{{it("wide", 40, 10), it("narrow", 20, 10)}, {it("next", 10, 10)}}},
	)}

	items := Layout(ref, testChrome).Doors[0].Rows[0].Items
	assert.Equal(t, 20.0, items[1].Box.X)
	assert.Equal(t, 51.0, items[2].Box.X, "next stack starts after the widest member")
}

func TestLayout_MultiDoorOffsets(t *testing.T) {
	ref := models.Refrigerator{
		"door-1": door(models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50}),
		"door-2": door(models.Row{ID: "row-1", Capacity: 60, MaxHeight: 70, Stacks: []models.Stack{{it("a", 10, 10)}}}),
	}

	geo := Layout(ref, testChrome)
	require.Len(t, geo.Doors, 2)
	assert.Equal(t, 10.0, geo.Doors[0].Content.X)
	assert.Equal(t, 134.0, geo.Doors[1].Content.X)
	assert.Equal(t, 134.0, geo.Doors[1].Rows[0].Items[0].Box.X)
	assert.Equal(t, 160.0, geo.ContentWidth)
	assert.Equal(t, 70.0, geo.ContentHeight)
	assert.Equal(t, 204.0, geo.TotalWidth)
	assert.Equal(t, 115.0, geo.TotalHeight)
	assert.Equal(t, "Door-2", geo.Doors[1].Label)
	assert.Equal(t, Rect{X: 124, Y: 0, Width: 80, Height: 115}, geo.Doors[1].Outer)
}

func TestExport_BlankSpaceConsumesWidthButIsNotExported(t *testing.T) {
	blank := it("blank", 20, 50)
	blank.SkuID = models.BlankSpaceSkuID
	blank.ProductType = models.ProductTypeBlank

	ref := models.Refrigerator{"door-1": door(
		models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50, Stacks: []models.Stack{{blank}, {it("a", 10, 10)}}},
	)}

	doc := Export(ref, testChrome, 1)
	assert.Equal(t, 1, doc.ProductCount())
	p := doc.Doors["Door-1"].Sections[0].Products[0]
	assert.Equal(t, 31.0, p.BoundingBox[0][0])
	assert.Equal(t, "1-2-1", p.Position)
}

func TestDocument_JSONShape(t *testing.T) {
	ref := models.Refrigerator{
		"door-1": door(models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50, Stacks: []models.Stack{{it("a", 10, 10)}}}),
		"door-2": door(models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50}),
	}
	doc := Export(ref, testChrome, 1)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Contains(t, generic, "Door-1")
	assert.Contains(t, generic, "Door-2")
	assert.Contains(t, generic, "dimensions")

	door1 := generic["Door-1"].(map[string]any)
	assert.Equal(t, true, door1["Door-Visible"])
	product := door1["Sections"].([]any)[0].(map[string]any)["products"].([]any)[0].(map[string]any)
	assert.Equal(t, "sku-a", product["SKU-Code"])
	assert.Len(t, product["Bounding-Box"], 4)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"Door-1", "Door-2"}, back.Order)
	assert.Equal(t, doc.Dimensions, back.Dimensions)
	assert.Equal(t, doc.Doors["Door-1"], back.Doors["Door-1"])
}

func TestLayout_RowsFollowTemplateSequence(t *testing.T) {
	layout := models.LayoutData{ID: "l", Doors: []models.DoorLayout{{ID: "door-1", Rows: []models.RowLayout{
		{ID: "top", Capacity: 100, MaxHeight: 50},
		{ID: "middle", Capacity: 100, MaxHeight: 60},
		{ID: "bottom", Capacity: 100, MaxHeight: 70},
	}}}}
	require.NoError(t, layout.Validate())

	geo := Layout(layout.NewRefrigerator(), testChrome)
	rows := geo.Doors[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "top", rows[0].ID)
	assert.Equal(t, 30.0, rows[0].Box.Y)
	assert.Equal(t, "middle", rows[1].ID)
	assert.Equal(t, 80.0, rows[1].Box.Y)
	assert.Equal(t, "bottom", rows[2].ID)
	assert.Equal(t, 140.0, rows[2].Box.Y)

	doc := Export(layout.NewRefrigerator(), testChrome, 1)
	assert.Equal(t, 1, doc.Doors["Door-1"].Sections[0].Position)
}

func TestExport_DimensionsFollowTemplateDoorSize(t *testing.T) {
	layout := models.LayoutData{ID: "l", Doors: []models.DoorLayout{{ID: "door-1", Width: 150, Height: 300, Rows: []models.RowLayout{
		{ID: "row-1", Capacity: 100, MaxHeight: 50},
		{ID: "row-2", Capacity: 100, MaxHeight: 80},
	}}}}
	require.NoError(t, layout.Validate())
	ref := layout.NewRefrigerator()

	doc := Export(ref, testChrome, 2, WithTemplate(layout))
	assert.Equal(t, 300.0, doc.Dimensions.ContentWidth)
	assert.Equal(t, 600.0, doc.Dimensions.ContentHeight)
	assert.Equal(t, (150.0+20)*2, doc.Dimensions.TotalWidth)
	assert.Equal(t, (300.0+20+5+20)*2, doc.Dimensions.TotalHeight)

	geo := Layout(ref, testChrome)
	assert.Equal(t, 100.0, geo.ContentWidth)
	assert.Equal(t, 130.0, geo.ContentHeight)
}

func TestLayout_TemplateSmallerThanRowsKeepsRowExtent(t *testing.T) {
	ref := models.Refrigerator{"door-1": door(models.Row{ID: "row-1", Capacity: 100, MaxHeight: 50})}
	layout := models.LayoutData{ID: "l", Doors: []models.DoorLayout{{ID: "door-1", Width: 10, Height: 10}}}

	geo := Layout(ref, testChrome, WithTemplate(layout))
	assert.Equal(t, 100.0, geo.Doors[0].Content.Width)
	assert.Equal(t, 50.0, geo.Doors[0].Content.Height)
}
