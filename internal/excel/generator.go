package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phoenix-shipper/booking-docs/internal/format"
	"github.com/phoenix-shipper/booking-docs/internal/model"
	"github.com/phoenix-shipper/booking-docs/internal/pdf"
)

const summarySheet = "Summary"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// FileName is the download name of a goods manifest.
func FileName(jobID string) string {
	return fmt.Sprintf("Phoenix_Shipper_Manifest_%s.xlsx", strings.TrimSpace(jobID))
}

// Generate writes a summary sheet and one sheet per pickup and delivery.
func (g *Generator) Generate(job model.Job, jobID string) ([]byte, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, pdf.ErrMissingJobID
	}
	job = job.Normalize()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	plan := pdf.BuildPlan(job)

	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, job, jobID, plan); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for i := range job.Pickups {
		sheet := buildSheetName("Pickup", i, job.Pickups[i].Suburb, usedNames)
		usedNames[sheet] = struct{}{}
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := g.writePickup(file, sheet, job, i); err != nil {
			return nil, err
		}
	}
	for i := range job.Deliveries {
		sheet := buildSheetName("Delivery", i, job.Deliveries[i].Suburb, usedNames)
		usedNames[sheet] = struct{}{}
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := g.writeDelivery(file, sheet, job, i); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, job model.Job, jobID string, plan pdf.Plan) error {
	sheet := summarySheet
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Job ID")
	set("B1", jobID)
	set("A2", "Job type")
	set("B2", format.JobTypeLabel(job.JobType))
	set("A3", "Created")
	set("B3", formatDate(job.CreatedAt))
	set("A4", "Customer")
	set("B4", format.Value(job.Customer.Name))
	set("A5", "Vehicle")
	set("B5", format.VehicleDetails(job.Vehicle, job.Refrigerated))
	set("A6", "Transfer required")
	set("B6", format.YesNo(job.TransferRequired))
	set("A7", "Total items")
	set("B7", format.TotalItems(job.DeliveryGoods))
	set("A8", "Total weight, kg")
	set("B8", format.TotalWeight(job.DeliveryGoods).InexactFloat64())
	set("A9", "Document pages")
	set("B9", plan.Total)

	tableRow := 11
	headers := []string{"Stop", "Company", "Address", "Schedule", "Items", "Weight, kg", "Pages"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	pages := plan.DeliveryPageCounts(len(job.Deliveries))
	row := tableRow + 1
	writeStop := func(label string, loc model.Location, goods *model.Goods, pageCount int) {
		list := []*model.Goods{goods}
		set(fmt.Sprintf("A%d", row), label)
		set(fmt.Sprintf("B%d", row), format.Value(loc.Company))
		set(fmt.Sprintf("C%d", row), format.Address(&loc))
		set(fmt.Sprintf("D%d", row), format.Schedule(&loc))
		set(fmt.Sprintf("E%d", row), format.TotalItems(list))
		set(fmt.Sprintf("F%d", row), format.TotalWeight(list).InexactFloat64())
		set(fmt.Sprintf("G%d", row), pageCount)
		row++
	}
	for i, loc := range job.Pickups {
		writeStop(fmt.Sprintf("Pickup %d", i+1), loc, job.PickupGoodsAt(i), 1)
	}
	for i, loc := range job.Deliveries {
		writeStop(fmt.Sprintf("Delivery %d", i+1), loc, job.DeliveryGoodsAt(i), pages[i])
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 28)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "G", 16)
	return nil
}

func (g *Generator) writePickup(file *excelize.File, sheet string, job model.Job, idx int) error {
	loc := job.Pickups[idx]
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}
	writeLocation(set, loc)

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Packaging")
	for i, line := range format.DetailedPackaging(job.PickupGoodsAt(idx)) {
		set(fmt.Sprintf("A%d", tableRow+1+i), line)
	}

	_ = file.SetColWidth(sheet, "A", "A", 70)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func (g *Generator) writeDelivery(file *excelize.File, sheet string, job model.Job, idx int) error {
	loc := job.Deliveries[idx]
	goods := job.DeliveryGoodsAt(idx)
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}
	writeLocation(set, loc)

	units := pdf.ExpandPackagingUnits(goods)
	tableRow := 7
	headers := []string{"Unit", "Type", "Index", "Type weight, kg", "Dimensions", "Handling"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	if len(units) == 0 {
		set(fmt.Sprintf("A%d", tableRow+1), format.NotAvailable)
	}
	for i, unit := range units {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), unit.Number)
		set(fmt.Sprintf("B%d", row), unit.Label)
		set(fmt.Sprintf("C%d", row), fmt.Sprintf("%d of %d", unit.Index, unit.Count))
		set(fmt.Sprintf("D%d", row), unit.Source.Weight.InexactFloat64())
		set(fmt.Sprintf("E%d", row), unit.Source.Dimensions)
		set(fmt.Sprintf("F%d", row), format.Handling(unit.Source))
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "F", 16)
	return nil
}

func writeLocation(set func(string, interface{}), loc model.Location) {
	set("A1", "Company")
	set("B1", format.Value(loc.Company))
	set("A2", "Contact")
	set("B2", format.Contact(&loc))
	set("A3", "Address")
	set("B3", format.Address(&loc))
	set("A4", "Schedule")
	set("B4", format.Schedule(&loc))
	set("A5", "Instructions")
	set("B5", format.Value(loc.Instructions))
}

func buildSheetName(kind string, idx int, suburb string, used map[string]struct{}) string {
	base := fmt.Sprintf("%s %d", kind, idx+1)
	if s := strings.TrimSpace(suburb); s != "" {
		base = fmt.Sprintf("%s - %s", base, s)
	}
	base = sanitizeSheetName(base)

	base = truncateRunes(base, maxSheetName)

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		nameCandidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		counter++
	}
}

// Excel limits sheet names to 31 characters, not bytes.
const maxSheetName = 31

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
