package pdf

import "github.com/phoenix-shipper/booking-docs/internal/model"

type PageKind int

const (
	PageSummary PageKind = iota
	PagePickup
	PageDelivery
)

func (k PageKind) String() string {
	switch k {
	case PageSummary:
		return "summary"
	case PagePickup:
		return "pickup"
	case PageDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// PageSpec describes one page of the booking document.
type PageSpec struct {
	Kind PageKind
	// Number is the 1-based page number printed in the footer.
	Number int
	// Location is the index into Pickups or Deliveries.
	Location int
	// Unit is the packaging unit a delivery page is about, nil when the
	// delivery has no selected packaging.
	Unit *model.PackagingUnit
	// Units holds every unit of the delivery the page belongs to.
	Units []model.PackagingUnit
}

type Plan struct {
	Pages []PageSpec
	Total int
}

// ExpandPackagingUnits fans selected packaging out into one unit per physical
// item, ordered pallets, boxes, bags, others.
func ExpandPackagingUnits(goods *model.Goods) []model.PackagingUnit {
	var units []model.PackagingUnit
	for _, item := range goods.Selected() {
		count := item.Packaging.Quantity
		for i := 1; i <= count; i++ {
			units = append(units, model.PackagingUnit{
				Key:    item.Key,
				Label:  model.PackagingLabel(item.Key, false),
				Index:  i,
				Count:  count,
				Source: item.Packaging,
			})
		}
	}
	for i := range units {
		units[i].Number = i + 1
		units[i].Total = len(units)
	}
	return units
}

// BuildPlan lays out every page of the document in render order. Footers
// read their numbers from the plan, so the total can not drift from the
// pages actually rendered.
func BuildPlan(job model.Job) Plan {
	pages := []PageSpec{{Kind: PageSummary}}
	for i := range job.Pickups {
		pages = append(pages, PageSpec{Kind: PagePickup, Location: i})
	}
	for i := range job.Deliveries {
		units := ExpandPackagingUnits(job.DeliveryGoodsAt(i))
		if len(units) == 0 {
			pages = append(pages, PageSpec{Kind: PageDelivery, Location: i})
			continue
		}
		for u := range units {
			pages = append(pages, PageSpec{
				Kind:     PageDelivery,
				Location: i,
				Unit:     &units[u],
				Units:    units,
			})
		}
	}
	for i := range pages {
		pages[i].Number = i + 1
	}
	return Plan{Pages: pages, Total: len(pages)}
}

// CountPages returns BuildPlan(job).Total without materializing the pages.
func CountPages(job model.Job) int {
	total := 1 + len(job.Pickups)
	for i := range job.Deliveries {
		total += max(1, job.DeliveryGoodsAt(i).UnitCount())
	}
	return total
}

// DeliveryPageCounts returns how many pages each delivery occupies.
func (p Plan) DeliveryPageCounts(deliveries int) []int {
	counts := make([]int, deliveries)
	for _, page := range p.Pages {
		if page.Kind == PageDelivery && page.Location < deliveries {
			counts[page.Location]++
		}
	}
	return counts
}
