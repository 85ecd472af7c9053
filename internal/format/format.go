// Package format turns booking data into the display strings printed on
// booking documents. Every function is pure.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

const (
	NotAvailable = "N/A"
	NoAddress    = "No address provided"
)

// Address renders "1 St, Suburb STATE 2000".
func Address(loc *model.Location) string {
	if loc == nil {
		return NoAddress
	}
	tail := joinNonEmpty(" ", loc.Suburb, loc.State, loc.Postcode)
	result := joinNonEmpty(", ", loc.Address, tail)
	if result == "" {
		return NoAddress
	}
	return result
}

// DetailedPackaging returns one line per selected packaging type.
func DetailedPackaging(goods *model.Goods) []string {
	selected := goods.Selected()
	if len(selected) == 0 {
		return []string{NotAvailable}
	}
	lines := make([]string, 0, len(selected))
	for _, item := range selected {
		lines = append(lines, PackagingLine(item.Key, item.Packaging))
	}
	return lines
}

// PackagingLine renders a single packaging record.
func PackagingLine(key string, p *model.Packaging) string {
	if p == nil {
		return fmt.Sprintf("%s: %s", model.PackagingLabel(key, true), NotAvailable)
	}
	parts := []string{
		fmt.Sprintf("%s: %d", model.PackagingLabel(key, true), p.Quantity),
		Weight(p.Weight),
	}
	if dims := strings.TrimSpace(p.Dimensions); dims != "" {
		parts = append(parts, dims+" cm")
	}
	if flags := Handling(p); flags != "" {
		parts = append(parts, flags)
	}
	if len(p.PalletTypes) > 0 {
		parts = append(parts, "Types: "+strings.Join(p.PalletTypes, ", "))
	}
	return strings.Join(parts, " | ")
}

// Handling lists the handling flags of a packaging record.
func Handling(p *model.Packaging) string {
	if p == nil {
		return ""
	}
	var flags []string
	if p.Secured {
		flags = append(flags, "Secured")
	}
	if p.Fragile {
		flags = append(flags, "Fragile")
	}
	if p.Hazardous {
		flags = append(flags, "Hazardous")
	}
	return strings.Join(flags, ", ")
}

func VehicleDetails(v model.Vehicle, refrigerated bool) string {
	if v.IsZero() {
		return NotAvailable
	}
	name := v.Name
	if name == "" {
		name = v.ID
	}
	result := name
	if v.Capacity != "" {
		result = fmt.Sprintf("%s (%s)", name, v.Capacity)
	}
	if v.Details != "" {
		result += " - " + v.Details
	}
	if refrigerated {
		result += " - Refrigerated"
	}
	return result
}

// TotalWeight sums the weight of selected packaging across locations.
func TotalWeight(goods []*model.Goods) decimal.Decimal {
	total := decimal.Zero
	for _, g := range goods {
		for _, item := range g.Selected() {
			total = total.Add(item.Packaging.Weight)
		}
	}
	return total
}

// TotalItems sums the quantity of selected packaging across locations.
func TotalItems(goods []*model.Goods) int {
	total := 0
	for _, g := range goods {
		for _, item := range g.Selected() {
			total += item.Packaging.Quantity
		}
	}
	return total
}

func Weight(w decimal.Decimal) string {
	return w.Round(2).String() + " kg"
}

// Value substitutes N/A for blank strings.
func Value(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func JobTypeLabel(t model.JobType) string {
	switch t {
	case model.JobTypeMultiPickup:
		return "Multi-Pickup"
	case model.JobTypeMultiDrop:
		return "Multi-Drop"
	case model.JobTypeSingle, "":
		return "Single"
	default:
		return string(t)
	}
}

// Schedule renders "2024-05-01 at 09:00".
func Schedule(loc *model.Location) string {
	if loc == nil {
		return NotAvailable
	}
	switch {
	case loc.Date != "" && loc.Time != "":
		return loc.Date + " at " + loc.Time
	case loc.Date != "":
		return loc.Date
	case loc.Time != "":
		return loc.Time
	default:
		return NotAvailable
	}
}

func Contact(loc *model.Location) string {
	if loc == nil {
		return NotAvailable
	}
	return Value(joinNonEmpty(" - ", loc.ContactName, loc.ContactPhone))
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
