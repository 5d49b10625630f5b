package models

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// AllowedTypes restricts which product types a row accepts.
// An empty list accepts every type and is encoded as "all".
type AllowedTypes struct {
	Types []ProductType
}

// AllowAll accepts every product type.
func AllowAll() AllowedTypes { return AllowedTypes{} }

// AllowOnly accepts the listed types.
func AllowOnly(types ...ProductType) AllowedTypes {
	return AllowedTypes{Types: lo.Uniq(types)}
}

func (a AllowedTypes) AcceptsAll() bool { return len(a.Types) == 0 }

// Allows reports whether t may be placed.
func (a AllowedTypes) Allows(t ProductType) bool {
	return a.AcceptsAll() || lo.Contains(a.Types, t)
}

func (a AllowedTypes) Clone() AllowedTypes {
	if a.Types == nil {
		return a
	}
	return AllowedTypes{Types: append([]ProductType(nil), a.Types...)}
}

func (a AllowedTypes) MarshalJSON() ([]byte, error) {
	if a.AcceptsAll() {
		return json.Marshal("all")
	}
	return json.Marshal(a.Types)
}

func (a *AllowedTypes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AllowAll()
		return nil
	}

	var keyword string
	if err := json.Unmarshal(data, &keyword); err == nil {
		if keyword != "all" {
			return fmt.Errorf("allowed product types: unknown keyword %q", keyword)
		}
		*a = AllowAll()
		return nil
	}

	var types []ProductType
	if err := json.Unmarshal(data, &types); err != nil {
		return fmt.Errorf("allowed product types: %w", err)
	}
	*a = AllowOnly(types...)
	return nil
}
