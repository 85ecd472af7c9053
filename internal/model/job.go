package model

import (
	"fmt"
	"strings"
	"time"
)

// MaxLocations caps the pickups and the deliveries of one job.
const MaxLocations = 50

type JobType string

const (
	JobTypeSingle      JobType = "single"
	JobTypeMultiPickup JobType = "multi-pickup"
	JobTypeMultiDrop   JobType = "multi-drop"
)

type Vehicle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity string `json:"capacity"`
	Details  string `json:"details"`
}

func (v Vehicle) IsZero() bool {
	return v.ID == "" && v.Name == "" && v.Capacity == "" && v.Details == ""
}

type Customer struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Location is a pickup or delivery stop.
type Location struct {
	Company      string `json:"company"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	Address      string `json:"address"`
	Suburb       string `json:"suburb"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Instructions string `json:"instructions"`
}

type Job struct {
	JobType          JobType    `json:"jobType"`
	Vehicle          Vehicle    `json:"vehicle"`
	Customer         Customer   `json:"customer"`
	Pickups          []Location `json:"pickups"`
	Deliveries       []Location `json:"deliveries"`
	PickupGoods      []*Goods   `json:"pickupGoods"`
	DeliveryGoods    []*Goods   `json:"deliveryGoods"`
	TransferRequired bool       `json:"transferRequired"`
	Refrigerated     bool       `json:"refrigerated"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Normalize returns a copy of the job with every optional field defaulted, so
// rendering code does not have to repeat nil guards.
func (j Job) Normalize() Job {
	out := j
	if strings.TrimSpace(string(out.JobType)) == "" {
		out.JobType = JobTypeSingle
	}
	out.JobType = JobType(strings.ToLower(strings.TrimSpace(string(out.JobType))))
	out.Notes = strings.TrimSpace(out.Notes)
	out.Vehicle = Vehicle{
		ID:       strings.TrimSpace(j.Vehicle.ID),
		Name:     strings.TrimSpace(j.Vehicle.Name),
		Capacity: strings.TrimSpace(j.Vehicle.Capacity),
		Details:  strings.TrimSpace(j.Vehicle.Details),
	}
	out.Customer = Customer{
		Name:    strings.TrimSpace(j.Customer.Name),
		Company: strings.TrimSpace(j.Customer.Company),
		Email:   strings.TrimSpace(j.Customer.Email),
		Phone:   strings.TrimSpace(j.Customer.Phone),
	}
	out.Pickups = normalizeLocations(j.Pickups)
	out.Deliveries = normalizeLocations(j.Deliveries)
	out.PickupGoods = alignGoods(j.PickupGoods, len(out.Pickups))
	out.DeliveryGoods = alignGoods(j.DeliveryGoods, len(out.Deliveries))
	return out
}

// Validate reports structural problems that would make the document wrong.
func (j Job) Validate() error {
	switch j.JobType {
	case "", JobTypeSingle, JobTypeMultiPickup, JobTypeMultiDrop:
	default:
		return fmt.Errorf("unknown job type %q", j.JobType)
	}
	check := func(kind string, goods []*Goods) error {
		for i, g := range goods {
			if g == nil {
				continue
			}
			for _, key := range PackagingKeys {
				p := g.PackagingTypes.Get(key)
				if p == nil {
					continue
				}
				if p.Quantity < 0 {
					return fmt.Errorf("%s %d: %s quantity is negative", kind, i+1, key)
				}
				if p.Weight.IsNegative() {
					return fmt.Errorf("%s %d: %s weight is negative", kind, i+1, key)
				}
			}
			if units := g.UnitCount(); units > MaxUnitsPerLocation {
				return fmt.Errorf("%s %d: %d packaging units exceed the limit of %d", kind, i+1, units, MaxUnitsPerLocation)
			}
		}
		return nil
	}
	if len(j.Pickups) > MaxLocations {
		return fmt.Errorf("%d pickups exceed the limit of %d", len(j.Pickups), MaxLocations)
	}
	if len(j.Deliveries) > MaxLocations {
		return fmt.Errorf("%d deliveries exceed the limit of %d", len(j.Deliveries), MaxLocations)
	}
	if err := check("pickup", j.PickupGoods); err != nil {
		return err
	}
	return check("delivery", j.DeliveryGoods)
}

// PickupGoodsAt returns the goods of pickup i or nil.
func (j Job) PickupGoodsAt(i int) *Goods {
	if i < 0 || i >= len(j.PickupGoods) {
		return nil
	}
	return j.PickupGoods[i]
}

// DeliveryGoodsAt returns the goods of delivery i or nil.
func (j Job) DeliveryGoodsAt(i int) *Goods {
	if i < 0 || i >= len(j.DeliveryGoods) {
		return nil
	}
	return j.DeliveryGoods[i]
}

func normalizeLocations(in []Location) []Location {
	out := make([]Location, len(in))
	for i, loc := range in {
		out[i] = Location{
			Company:      strings.TrimSpace(loc.Company),
			ContactName:  strings.TrimSpace(loc.ContactName),
			ContactPhone: strings.TrimSpace(loc.ContactPhone),
			Address:      strings.TrimSpace(loc.Address),
			Suburb:       strings.TrimSpace(loc.Suburb),
			State:        strings.TrimSpace(loc.State),
			Postcode:     strings.TrimSpace(loc.Postcode),
			Date:         strings.TrimSpace(loc.Date),
			Time:         strings.TrimSpace(loc.Time),
			Instructions: strings.TrimSpace(loc.Instructions),
		}
	}
	return out
}

func alignGoods(in []*Goods, n int) []*Goods {
	out := make([]*Goods, n)
	copy(out, in)
	return out
}
