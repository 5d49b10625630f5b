package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSkus = `[
  {"skuId": "cola", "name": "Cola", "widthMM": 75, "heightMM": 125, "productType": "CAN", "constraints": {"stackable": true, "deletable": true}}
]`

const testLayouts = `[
  {"id": "single-2", "name": "Single", "doors": [{"id": "door-1", "width": 200, "height": 300, "rows": [
    {"id": "row-1", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"},
    {"id": "row-2", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"}
  ]}]}
]`

const testPayload = `{"Door-1": {"Door-Visible": true, "Sections": [
  {"products": [{"SKU-Code": "cola", "Product": "Cola", "stacked": [{"SKU-Code": "cola", "Product": "Cola"}]}]},
  {"products": [{"SKU-Code": "EMPTY"}, {"SKU-Code": "cola", "Product": "Cola"}]}
]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func importDraft(t *testing.T) (dir, draftPath string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, dir, "skus.json", testSkus)
	writeFile(t, dir, "layouts.json", testLayouts)
	payload := writeFile(t, dir, "payload.json", testPayload)
	draftPath = filepath.Join(dir, "draft.json")

	_, err := run(t, "import", "--payload", payload, "--catalog", dir, "--output", draftPath)
	require.NoError(t, err)
	return dir, draftPath
}

func TestImport_WritesDraft(t *testing.T) {
	_, draftPath := importDraft(t)

	d, err := readDraft(draftPath)
	require.NoError(t, err)
	assert.Equal(t, "single-2", d.LayoutID)
	assert.NotEmpty(t, d.Timestamp)

	ref := current(d)
	assert.Len(t, ref.Items(), 3)
	row1, ok := ref.Row("door-1", "row-1")
	require.True(t, ok)
	require.Len(t, row1.Stacks, 1)
	assert.Len(t, row1.Stacks[0], 2)
}

func TestValidate_CleanDraft(t *testing.T) {
	_, draftPath := importDraft(t)

	out, err := run(t, "validate", "--draft", draftPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 3 items")
}

func TestValidate_ReportsViolations(t *testing.T) {
	dir := t.TempDir()
	ref := models.Refrigerator{"door-1": models.Door{"row-1": models.Row{
		ID: "row-1", Capacity: 10, MaxHeight: 100,
		Stacks: []models.Stack{{models.Item{ID: "a", SkuID: "cola", Width: 30, Height: 50}}},
	}}}
	data, err := json.Marshal(persistence.Draft{State: store.State{LayoutID: "x", Refrigerator: ref}})
	require.NoError(t, err)
	draftPath := writeFile(t, dir, "draft.json", string(data))

	out, err := run(t, "validate", "--draft", draftPath)
	require.Error(t, err)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "ok:")
}

func TestExport_Document(t *testing.T) {
	dir, draftPath := importDraft(t)

	out, err := run(t, "export", "--draft", draftPath, "--catalog", dir, "--scale", "2")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "Door-1")
	assert.Contains(t, doc, "dimensions")
}

func TestRender_SVG(t *testing.T) {
	_, draftPath := importDraft(t)

	out, err := run(t, "render", "--draft", draftPath)
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
}

func TestImport_AmbiguousNeedsLayout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skus.json", testSkus)
	writeFile(t, dir, "layouts.json", `[
  {"id": "a", "name": "A", "doors": [{"id": "door-1", "width": 200, "height": 300, "rows": [
    {"id": "row-1", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"},
    {"id": "row-2", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"}]}]},
  {"id": "b", "name": "B", "doors": [{"id": "door-1", "width": 200, "height": 300, "rows": [
    {"id": "row-1", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"},
    {"id": "row-2", "capacity": 100, "maxHeight": 120, "allowedProductTypes": "all"}]}]}
]`)
	payload := writeFile(t, dir, "payload.json", testPayload)

	_, err := run(t, "import", "--payload", payload, "--catalog", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a, b")

	out, err := run(t, "import", "--payload", payload, "--catalog", dir, "--layout", "b")
	require.NoError(t, err)
	assert.Contains(t, out, `"layoutId": "b"`)
}

func TestExport_MissingDraft(t *testing.T) {
	_, err := run(t, "export", "--draft", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
