package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"planogram-editor/internal/planogram/models"

	"github.com/gofiber/fiber/v3/log"
	"github.com/samber/lo"
)

// ============================================================
// File locations
// ============================================================

const (
	SkusFile    = "skus.json"
	LayoutsFile = "layouts.json"
)

type FileStorage struct {
	root string
}

// NewFileStorage reads catalog files under root.
func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) SkusPath() string {
	return filepath.Join(s.root, SkusFile)
}

func (s *FileStorage) LayoutsPath() string {
	return filepath.Join(s.root, LayoutsFile)
}

// ============================================================
// Catalog
// ============================================================

// Catalog holds the Sku templates and LayoutData models for a session.
// It is read-only after construction and safe for concurrent use.
type Catalog struct {
	skus        map[string]models.Sku
	skuOrder    []string
	layouts     map[string]models.LayoutData
	layoutOrder []string
}

// New indexes the given templates. The blank space pseudo-Sku is always
// present.
func New(skus []models.Sku, layouts []models.LayoutData) (*Catalog, error) {
	c := &Catalog{
		skus:    make(map[string]models.Sku, len(skus)+1),
		layouts: make(map[string]models.LayoutData, len(layouts)),
	}

	for _, sku := range append([]models.Sku{models.BlankSpaceSku()}, skus...) {
		if sku.SkuID == "" {
			return nil, fmt.Errorf("catalog: sku without id")
		}
		if _, dup := c.skus[sku.SkuID]; dup {
			if sku.SkuID == models.BlankSpaceSkuID {
				continue
			}
			return nil, fmt.Errorf("catalog: duplicate sku %q", sku.SkuID)
		}
		c.skus[sku.SkuID] = sku.WithPixels()
		c.skuOrder = append(c.skuOrder, sku.SkuID)
	}

	for _, layout := range layouts {
		if err := layout.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.layouts[layout.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate layout %q", layout.ID)
		}
		c.layouts[layout.ID] = layout
		c.layoutOrder = append(c.layoutOrder, layout.ID)
	}
	return c, nil
}

// Load reads skus.json and layouts.json from dir.
func Load(dir string) (*Catalog, error) {
	fs := NewFileStorage(dir)

	var skus []models.Sku
	if err := readJSON(fs.SkusPath(), &skus); err != nil {
		return nil, err
	}
	var layouts []models.LayoutData
	if err := readJSON(fs.LayoutsPath(), &layouts); err != nil {
		return nil, err
	}

	c, err := New(skus, layouts)
	if err != nil {
		return nil, err
	}
	log.Infof("[CATALOG] loaded %d skus, %d layouts from %s", len(c.skuOrder), len(c.layoutOrder), dir)
	return c, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Sku looks up a template by id.
func (c *Catalog) Sku(id string) (models.Sku, bool) {
	sku, ok := c.skus[id]
	return sku, ok
}

// Skus returns the templates in file order, blank space first.
func (c *Catalog) Skus() []models.Sku {
	return lo.Map(c.skuOrder, func(id string, _ int) models.Sku { return c.skus[id] })
}

// Layout looks up a layout template by id.
func (c *Catalog) Layout(id string) (models.LayoutData, bool) {
	layout, ok := c.layouts[id]
	return layout, ok
}

func (c *Catalog) Layouts() []models.LayoutData {
	return lo.Map(c.layoutOrder, func(id string, _ int) models.LayoutData { return c.layouts[id] })
}
