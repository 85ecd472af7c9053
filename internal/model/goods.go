package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PackagingPallets = "pallets"
	PackagingBoxes   = "boxes"
	PackagingBags    = "bags"
	PackagingOthers  = "others"
)

// MaxUnitsPerLocation caps the selected physical units of one pickup or
// delivery. Every delivery unit becomes a document page.
const MaxUnitsPerLocation = 250

var maxQuantity = decimal.NewFromInt(math.MaxInt32)

// PackagingKeys is the fixed render order of packaging types.
var PackagingKeys = []string{PackagingPallets, PackagingBoxes, PackagingBags, PackagingOthers}

var packagingLabels = map[string][2]string{
	PackagingPallets: {"Pallet", "Pallets"},
	PackagingBoxes:   {"Box", "Boxes"},
	PackagingBags:    {"Bag", "Bags"},
	PackagingOthers:  {"Other", "Others"},
}

// PackagingLabel returns the singular or plural display label of a packaging key.
func PackagingLabel(key string, plural bool) string {
	labels, ok := packagingLabels[key]
	if !ok {
		return key
	}
	if plural {
		return labels[1]
	}
	return labels[0]
}

type Packaging struct {
	Selected    bool            `json:"selected"`
	Quantity    int             `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	Dimensions  string          `json:"dimensions"`
	Secured     bool            `json:"secured"`
	Fragile     bool            `json:"fragile"`
	Hazardous   bool            `json:"hazardous"`
	PalletTypes []string        `json:"palletTypes,omitempty"`
}

// UnmarshalJSON accepts quantity and weight either as JSON numbers or as form
// strings, treating empty strings as zero.
func (p *Packaging) UnmarshalJSON(data []byte) error {
	type alias Packaging
	aux := struct {
		*alias
		Quantity json.RawMessage `json:"quantity"`
		Weight   json.RawMessage `json:"weight"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	quantity, err := parseNumber(aux.Quantity)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	weight, err := parseNumber(aux.Weight)
	if err != nil {
		return fmt.Errorf("weight: %w", err)
	}
	if !quantity.IsInteger() {
		return fmt.Errorf("quantity %s is not a whole number", quantity)
	}
	if quantity.Abs().GreaterThan(maxQuantity) {
		return fmt.Errorf("quantity %s is out of range", quantity)
	}
	p.Quantity = int(quantity.IntPart())
	p.Weight = weight
	return nil
}

func parseNumber(raw json.RawMessage) (decimal.Decimal, error) {
	value := strings.TrimSpace(string(raw))
	if value == "" || value == "null" {
		return decimal.Zero, nil
	}
	value = strings.TrimSpace(strings.Trim(value, `"`))
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// PackagingTypes holds the optional packaging records of one location.
type PackagingTypes struct {
	Pallets *Packaging `json:"pallets,omitempty"`
	Boxes   *Packaging `json:"boxes,omitempty"`
	Bags    *Packaging `json:"bags,omitempty"`
	Others  *Packaging `json:"others,omitempty"`
}

func (t PackagingTypes) Get(key string) *Packaging {
	switch key {
	case PackagingPallets:
		return t.Pallets
	case PackagingBoxes:
		return t.Boxes
	case PackagingBags:
		return t.Bags
	case PackagingOthers:
		return t.Others
	default:
		return nil
	}
}

type Goods struct {
	Description    string         `json:"description"`
	PackagingTypes PackagingTypes `json:"packagingTypes"`
}

// Selected returns the selected packaging records in render order.
func (g *Goods) Selected() []SelectedPackaging {
	if g == nil {
		return nil
	}
	var out []SelectedPackaging
	for _, key := range PackagingKeys {
		p := g.PackagingTypes.Get(key)
		if p == nil || !p.Selected {
			continue
		}
		out = append(out, SelectedPackaging{Key: key, Packaging: p})
	}
	return out
}

// UnitCount is the number of physical units across the selected packaging.
func (g *Goods) UnitCount() int {
	total := 0
	for _, item := range g.Selected() {
		if item.Packaging.Quantity > 0 {
			total += item.Packaging.Quantity
		}
	}
	return total
}

type SelectedPackaging struct {
	Key       string
	Packaging *Packaging
}

// PackagingUnit is one physical item of an aggregate packaging record. Each
// unit of a delivery gets its own page.
type PackagingUnit struct {
	Key    string
	Label  string
	Index  int
	Count  int
	Number int
	Total  int
	Source *Packaging
}

// Describe renders "Pallet 2 of 3".
func (u PackagingUnit) Describe() string {
	return fmt.Sprintf("%s %d of %d", u.Label, u.Index, u.Count)
}
