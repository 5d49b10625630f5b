package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"planogram-editor/internal/planogram/models"
)

// ============================================================
// Detection payload
// ============================================================

// Payload is the detection result keyed by door label ("Door-1", "Door-2").
// Single door payloads carry only Door-1.
type Payload map[string]PayloadDoor

type PayloadDoor struct {
	Sections []Section `json:"Sections"`
	Visible  bool      `json:"Door-Visible"`
}

// Section is one detected shelf, products ordered left to right.
type Section struct {
	Position int               `json:"position,omitempty"`
	Products []DetectedProduct `json:"products"`
}

// DetectedProduct is the bottom of a detected stack; Stacked lists the
// products above it, bottom to top.
type DetectedProduct struct {
	SKUCode string            `json:"SKU-Code"`
	Name    string            `json:"Product"`
	Stacked []DetectedProduct `json:"stacked,omitempty"`
}

// IsEmpty reports the detector's marker for a gap on the shelf.
func (p DetectedProduct) IsEmpty() bool {
	code := strings.TrimSpace(p.SKUCode)
	return code == "" || strings.EqualFold(code, "empty")
}

// DoorLabels returns the payload's door keys in natural order.
func (p Payload) DoorLabels() []string {
	labels := make([]string, 0, len(p))
	for label := range p {
		labels = append(labels, label)
	}
	return models.SortedIDs(labels)
}

// SectionCount is the total number of detected shelves.
func (p Payload) SectionCount() int {
	n := 0
	for _, door := range p {
		n += len(door.Sections)
	}
	return n
}

// ParsePayload decodes a detection payload.
func ParsePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p.SectionCount() == 0 {
		return nil, ErrEmptyPayload
	}
	return p, nil
}
