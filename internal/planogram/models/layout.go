package models

import (
	"fmt"

	"github.com/samber/lo"
)

// ============================================================
// Chrome
// ============================================================

// Chrome holds the structural pixel constants around the shelf area.
type Chrome struct {
	FrameBorder  float64 `json:"frameBorder"`
	HeaderHeight float64 `json:"headerHeight"`
	GrilleHeight float64 `json:"grilleHeight"`
	DoorGap      float64 `json:"doorGap"`
}

// DefaultChrome is used when a layout carries none.
func DefaultChrome() Chrome {
	return Chrome{
		FrameBorder:  16,
		HeaderHeight: 60,
		GrilleHeight: 40,
		DoorGap:      8,
	}
}

// ============================================================
// Layout templates
// ============================================================

type RowLayout struct {
	ID                  string       `json:"id"`
	Capacity            float64      `json:"capacity"`
	MaxHeight           float64      `json:"maxHeight"`
	AllowedProductTypes AllowedTypes `json:"allowedProductTypes"`
}

// DoorLayout sizes are the door's shelf area in pixels; zero means the
// rows decide.
type DoorLayout struct {
	ID     string      `json:"id"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Rows   []RowLayout `json:"rows"`
}

// LayoutData is the read-only geometry of a named refrigerator model.
type LayoutData struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Doors  []DoorLayout `json:"doors"`
	Chrome *Chrome      `json:"chrome,omitempty"`
}

func (l LayoutData) DoorCount() int { return len(l.Doors) }

// RowCount is the shelf count across all doors.
func (l LayoutData) RowCount() int {
	return lo.SumBy(l.Doors, func(d DoorLayout) int { return len(d.Rows) })
}

func (l LayoutData) ChromeOrDefault() Chrome {
	if l.Chrome != nil {
		return *l.Chrome
	}
	return DefaultChrome()
}

// Validate checks the template for duplicate ids and non-positive sizes.
func (l LayoutData) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("layout: id required")
	}
	if len(l.Doors) == 0 {
		return fmt.Errorf("layout %s: no doors", l.ID)
	}
	doorIDs := map[string]bool{}
	for _, door := range l.Doors {
		if doorIDs[door.ID] {
			return fmt.Errorf("layout %s: duplicate door %q", l.ID, door.ID)
		}
		doorIDs[door.ID] = true

		rowIDs := map[string]bool{}
		for _, row := range door.Rows {
			if rowIDs[row.ID] {
				return fmt.Errorf("layout %s: door %s: duplicate row %q", l.ID, door.ID, row.ID)
			}
			rowIDs[row.ID] = true
			if row.Capacity <= 0 || row.MaxHeight <= 0 {
				return fmt.Errorf("layout %s: door %s: row %s has non-positive size", l.ID, door.ID, row.ID)
			}
		}
		if widest := lo.Max(lo.Map(door.Rows, func(r RowLayout, _ int) float64 { return r.Capacity })); door.Width > 0 && door.Width < widest {
			return fmt.Errorf("layout %s: door %s: width %.0fpx narrower than row capacity %.0fpx", l.ID, door.ID, door.Width, widest)
		}
		if rows := lo.SumBy(door.Rows, func(r RowLayout) float64 { return r.MaxHeight }); door.Height > 0 && door.Height < rows {
			return fmt.Errorf("layout %s: door %s: height %.0fpx shorter than its rows (%.0fpx)", l.ID, door.ID, door.Height, rows)
		}
	}
	return nil
}

// NewRefrigerator seeds an empty layout from the template.
func (l LayoutData) NewRefrigerator() Refrigerator {
	ref := make(Refrigerator, len(l.Doors))
	for _, door := range l.Doors {
		d := make(Door, len(door.Rows))
		for i, row := range door.Rows {
			d[row.ID] = Row{
				ID:                  row.ID,
				Position:            i + 1,
				Capacity:            row.Capacity,
				MaxHeight:           row.MaxHeight,
				Stacks:              []Stack{},
				AllowedProductTypes: row.AllowedProductTypes.Clone(),
			}
		}
		ref[door.ID] = d
	}
	return ref
}
