package pdf

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/phoenix-shipper/booking-docs/internal/format"
	"github.com/phoenix-shipper/booking-docs/internal/model"
)

const maxUnitRows = 8

// pageContext carries everything a page builder needs. Builders never keep
// state between pages.
type pageContext struct {
	doc       *gofpdf.Fpdf
	layout    *Layout
	plan      Plan
	page      PageSpec
	total     int
	job       model.Job
	jobID     string
	otp       string
	createdAt time.Time
}

func (g *Generator) renderSummary(pc pageContext) error {
	g.beginPage(pc, "BOOKING CONFIRMATION", "Created "+pc.createdAt.Format("02 Jan 2006 15:04"))

	y := contentTop
	if img := g.codes.BarcodePNG(pc.jobID); img != nil {
		placed, err := g.placeImage(pc.doc, "barcode", img, pageMargin, y, 80, 16)
		if err != nil {
			return err
		}
		if placed {
			y += 20
		}
	}

	job := pc.job
	cards := []Card{
		{
			Title: "Customer",
			Blocks: []Block{TextBlock{Text: strings.Join([]string{
				"Name: " + format.Value(job.Customer.Name),
				"Company: " + format.Value(job.Customer.Company),
				"Email: " + format.Value(job.Customer.Email),
				"Phone: " + format.Value(job.Customer.Phone),
			}, "\n")}},
		},
		{
			Title: "Job Overview",
			Blocks: []Block{TextBlock{Text: strings.Join([]string{
				"Job type: " + format.JobTypeLabel(job.JobType),
				"Vehicle: " + format.VehicleDetails(job.Vehicle, job.Refrigerated),
				"Transfer required: " + format.YesNo(job.TransferRequired),
				"Refrigerated: " + format.YesNo(job.Refrigerated),
				fmt.Sprintf("Pickup goods: %d items, %s", format.TotalItems(job.PickupGoods), format.Weight(format.TotalWeight(job.PickupGoods))),
				fmt.Sprintf("Delivery goods: %d items, %s", format.TotalItems(job.DeliveryGoods), format.Weight(format.TotalWeight(job.DeliveryGoods))),
				fmt.Sprintf("Document pages: %d", pc.total),
			}, "\n")}},
		},
		locationsCard("Pickups", job.Pickups, job.PickupGoods, nil),
		locationsCard("Deliveries", job.Deliveries, job.DeliveryGoods, pc.plan.DeliveryPageCounts(len(job.Deliveries))),
	}
	if job.Notes != "" {
		cards = append(cards, Card{Title: "Notes", Blocks: []Block{TextBlock{Text: job.Notes}}})
	}

	if _, err := stackCards(pc.layout, y, contentBottom, cards); err != nil {
		return err
	}
	g.footer(pc, "Summary")
	return pc.doc.Error()
}

func (g *Generator) renderPickup(pc pageContext) error {
	idx := pc.page.Location
	loc := pc.job.Pickups[idx]
	g.beginPage(pc,
		fmt.Sprintf("PICKUP %d OF %d", idx+1, len(pc.job.Pickups)),
		format.JobTypeLabel(pc.job.JobType)+" job | "+format.Address(&loc),
	)

	goods := pc.job.PickupGoodsAt(idx)
	cards := []Card{
		locationCard("Pickup Location", &loc),
		scheduleCard("Pickup Schedule", &loc),
		instructionsCard(&loc),
		{Title: "Goods", Blocks: goodsBlocks(goods)},
	}
	verification, reserved, err := g.verificationCard(pc, "pickup")
	if err != nil {
		return err
	}
	y, err := stackCards(pc.layout, contentTop, contentBottom-reserved-cardGap, cards)
	if err != nil {
		return err
	}

	payload := g.trackingPayload(pc.jobID, PagePickup, idx, nil)
	if err := g.drawVerification(pc, y, verification, payload); err != nil {
		return err
	}
	g.footer(pc, locationLabel("Pickup", idx, &loc))
	return pc.doc.Error()
}

func (g *Generator) renderDelivery(pc pageContext) error {
	idx := pc.page.Location
	loc := pc.job.Deliveries[idx]
	subtitle := "No packaging units"
	if unit := pc.page.Unit; unit != nil {
		subtitle = fmt.Sprintf("Unit %d of %d | %s", unit.Number, unit.Total, unit.Describe())
	}
	g.beginPage(pc, fmt.Sprintf("DELIVERY %d OF %d", idx+1, len(pc.job.Deliveries)), subtitle)

	cards := []Card{
		locationCard("Delivery Location", &loc),
		scheduleCard("Delivery Schedule", &loc),
		instructionsCard(&loc),
		{Title: "Goods", Blocks: deliveryGoodsBlocks(pc.job.DeliveryGoodsAt(idx), pc.page)},
	}
	verification, reserved, err := g.verificationCard(pc, "delivery")
	if err != nil {
		return err
	}
	y, err := stackCards(pc.layout, contentTop, contentBottom-reserved-cardGap, cards)
	if err != nil {
		return err
	}

	payload := g.trackingPayload(pc.jobID, PageDelivery, idx, pc.page.Unit)
	if err := g.drawVerification(pc, y, verification, payload); err != nil {
		return err
	}
	g.footer(pc, locationLabel("Delivery", idx, &loc))
	return pc.doc.Error()
}

func (g *Generator) beginPage(pc pageContext, title, subtitle string) {
	doc, l := pc.doc, pc.layout
	doc.AddPage()

	l.setFill(colorPage)
	doc.Rect(0, 0, pageWidth, pageHeight, "F")
	l.GradientBand(0, 0, pageWidth, headerHeight, colorBrandDark, colorBrand)

	l.setText(colorWhite)
	doc.SetFont(g.fontName, "B", 18)
	doc.SetXY(pageMargin, 6)
	doc.CellFormat(contentWidth, 9, clean(g.opts.CompanyName), "", 0, "L", false, 0, "")

	doc.SetFont(g.fontName, "B", 10)
	doc.SetXY(pageMargin, 6)
	doc.CellFormat(contentWidth, 9, clean("Job ID: "+pc.jobID), "", 0, "R", false, 0, "")

	doc.SetFont(g.fontName, "B", 12)
	doc.SetXY(pageMargin, 16)
	doc.CellFormat(contentWidth, 7, clean(title), "", 0, "L", false, 0, "")

	doc.SetFont(g.fontName, "", 9)
	doc.SetXY(pageMargin, 23)
	doc.CellFormat(contentWidth, 5, clean(subtitle), "", 0, "L", false, 0, "")
	l.setText(colorInk)
}

func (g *Generator) footer(pc pageContext, location string) {
	doc, l := pc.doc, pc.layout
	y := pageHeight - footerHeight
	l.GradientBand(0, y, pageWidth, footerHeight, colorBrand, colorBrandDark)
	l.setText(colorWhite)
	doc.SetFont(g.fontName, "", 9)
	doc.SetXY(pageMargin, y+4)
	doc.CellFormat(contentWidth, 6, clean(FooterText(pc.jobID, location, pc.page.Number, pc.total)), "", 0, "C", false, 0, "")
	l.setText(colorInk)
}

// FooterText renders the running footer of every page.
func FooterText(jobID, location string, page, total int) string {
	return fmt.Sprintf("Job ID: %s | %s | Page %d of %d", jobID, location, page, total)
}

// verificationCard builds the OTP card and returns the height its row needs,
// the taller of the card and the QR code.
func (g *Generator) verificationCard(pc pageContext, stop string) (Card, float64, error) {
	card := Card{
		Title: "Driver Verification",
		Blocks: []Block{
			TextBlock{Text: "OTP: " + format.Value(pc.otp), Bold: true, Size: 16, Color: &colorBrandDark},
			TextBlock{Text: fmt.Sprintf("Provide this code to the driver at %s. Scan the QR code to track this job.", stop), Color: &colorMuted},
		},
	}
	height, err := pc.layout.MeasureCard(verificationWidth, card)
	if err != nil {
		return Card{}, 0, err
	}
	return card, max(height, qrSize), nil
}

// drawVerification paints the OTP card with the tracking QR code beside it.
func (g *Generator) drawVerification(pc pageContext, y float64, card Card, payload string) error {
	if _, err := pc.layout.DrawCard(pageMargin, y, verificationWidth, card); err != nil {
		return err
	}

	qrX := pageMargin + verificationWidth + cardGap
	if img := g.codes.QRCodePNG(payload); img != nil {
		placed, err := g.placeImage(pc.doc, "qr-"+strconv.Itoa(pc.page.Number), img, qrX, y, qrSize, qrSize)
		if err != nil || placed {
			return err
		}
	}

	pc.layout.setText(colorMuted)
	pc.doc.SetFont(g.fontName, "", 8)
	pc.doc.SetXY(qrX, y+qrSize/2-3)
	pc.doc.CellFormat(qrSize, 6, "QR code unavailable", "", 0, "C", false, 0, "")
	pc.layout.setText(colorInk)
	return pc.doc.Error()
}

func (g *Generator) trackingPayload(jobID string, kind PageKind, location int, unit *model.PackagingUnit) string {
	stop := fmt.Sprintf("%s-%d", kind, location+1)
	base := strings.TrimRight(g.opts.TrackingBaseURL, "/")
	if base == "" {
		payload := fmt.Sprintf("PHOENIX|%s|%s", jobID, strings.ToUpper(stop))
		if unit != nil {
			payload += "|UNIT-" + strconv.Itoa(unit.Number)
		}
		return payload
	}
	query := url.Values{}
	query.Set("stop", stop)
	if unit != nil {
		query.Set("unit", strconv.Itoa(unit.Number))
	}
	return fmt.Sprintf("%s/%s?%s", base, url.PathEscape(jobID), query.Encode())
}

// placeImage draws a PNG. An image gofpdf can not decode is logged and
// skipped with placed == false; the document stays usable.
func (g *Generator) placeImage(doc *gofpdf.Fpdf, name string, data []byte, x, y, w, h float64) (placed bool, err error) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := doc.Error(); err != nil {
		g.opts.Logger.Warn().Err(err).Str("image", name).Msg("image skipped")
		doc.ClearError()
		return false, nil
	}
	doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return true, doc.Error()
}

// stackCards draws cards top to bottom, shrinking each one to the space left
// above bottom, and returns the Y below the last one. Cards that do not fit at
// all are dropped.
func stackCards(l *Layout, y, bottom float64, cards []Card) (float64, error) {
	for _, card := range cards {
		fitted, ok, err := l.FitCard(contentWidth, bottom-y, card)
		if err != nil {
			return 0, fmt.Errorf("card %q: %w", card.Title, err)
		}
		if !ok {
			break
		}
		res, err := l.DrawCard(pageMargin, y, contentWidth, fitted)
		if err != nil {
			return 0, fmt.Errorf("card %q: %w", card.Title, err)
		}
		y = res.FinalY + cardGap
	}
	return y, nil
}

func locationCard(title string, loc *model.Location) Card {
	return Card{
		Title: title,
		Blocks: []Block{TextBlock{Text: strings.Join([]string{
			"Company: " + format.Value(loc.Company),
			"Contact: " + format.Contact(loc),
			"Address: " + format.Address(loc),
		}, "\n")}},
	}
}

func scheduleCard(title string, loc *model.Location) Card {
	return Card{
		Title:  title,
		Blocks: []Block{TextBlock{Text: "Date & time: " + format.Schedule(loc)}},
	}
}

func instructionsCard(loc *model.Location) Card {
	return Card{
		Title:  "Instructions",
		Blocks: []Block{TextBlock{Text: format.Value(loc.Instructions)}},
	}
}

func goodsBlocks(goods *model.Goods) []Block {
	var blocks []Block
	if goods != nil && strings.TrimSpace(goods.Description) != "" {
		blocks = append(blocks, TextBlock{Text: goods.Description, Color: &colorMuted})
	}
	blocks = append(blocks, TextBlock{Text: strings.Join(format.DetailedPackaging(goods), "\n")})
	blocks = append(blocks, totalsBlock(goods))
	return blocks
}

func deliveryGoodsBlocks(goods *model.Goods, page PageSpec) []Block {
	if page.Unit == nil {
		return goodsBlocks(goods)
	}
	var blocks []Block
	if goods != nil && strings.TrimSpace(goods.Description) != "" {
		blocks = append(blocks, TextBlock{Text: goods.Description, Color: &colorMuted})
	}
	blocks = append(blocks, TextBlock{
		Text:  fmt.Sprintf("Current unit: Unit %d of %d (%s)", page.Unit.Number, page.Unit.Total, page.Unit.Describe()),
		Bold:  true,
		Color: &colorBrandDark,
	})

	start, end := unitWindow(len(page.Units), page.Unit.Number, maxUnitRows)
	rows := make([][]string, 0, end-start)
	for _, unit := range page.Units[start:end] {
		rows = append(rows, []string{
			strconv.Itoa(unit.Number),
			unit.Describe(),
			format.Weight(unit.Source.Weight),
			format.Value(unit.Source.Dimensions),
			format.Value(format.Handling(unit.Source)),
		})
	}
	blocks = append(blocks, TableBlock{
		Head:      []string{"#", "Unit", "Type weight", "Dimensions", "Handling"},
		Rows:      rows,
		Widths:    []float64{8, 30, 20, 24, 30},
		Highlight: page.Unit.Number - start,
	})
	if end-start < len(page.Units) {
		blocks = append(blocks, TextBlock{
			Text:  fmt.Sprintf("Showing units %d-%d of %d", start+1, end, len(page.Units)),
			Color: &colorMuted,
			Size:  8,
		})
	}
	blocks = append(blocks, totalsBlock(goods))
	return blocks
}

func totalsBlock(goods *model.Goods) TextBlock {
	list := []*model.Goods{goods}
	return TextBlock{
		Text: fmt.Sprintf("Items: %d | Weight: %s", format.TotalItems(list), format.Weight(format.TotalWeight(list))),
		Bold: true,
	}
}

// locationsCard tabulates locations for the summary page. pages, when set,
// adds the number of document pages per location.
func locationsCard(title string, locs []model.Location, goods []*model.Goods, pages []int) Card {
	if len(locs) == 0 {
		return Card{Title: title, Blocks: []Block{TextBlock{Text: "None", Color: &colorMuted}}}
	}
	head := []string{"#", "Company", "Address", "Schedule", "Goods"}
	widths := []float64{6, 24, 44, 24, 26}
	if pages != nil {
		head = append(head, "Pages")
		widths = append(widths, 10)
	}
	rows := make([][]string, 0, len(locs))
	for i := range locs {
		loc := &locs[i]
		var g *model.Goods
		if i < len(goods) {
			g = goods[i]
		}
		list := []*model.Goods{g}
		row := []string{
			strconv.Itoa(i + 1),
			format.Value(loc.Company),
			format.Address(loc),
			format.Schedule(loc),
			fmt.Sprintf("%d items, %s", format.TotalItems(list), format.Weight(format.TotalWeight(list))),
		}
		if pages != nil {
			row = append(row, strconv.Itoa(pages[i]))
		}
		rows = append(rows, row)
	}
	return Card{Title: title, Blocks: []Block{TableBlock{Head: head, Rows: rows, Widths: widths}}}
}

func locationLabel(kind string, idx int, loc *model.Location) string {
	label := fmt.Sprintf("%s %d", kind, idx+1)
	if loc.Suburb != "" {
		label += " - " + loc.Suburb
	}
	return label
}

// unitWindow picks at most limit rows around the current unit (1-based).
func unitWindow(total, current, limit int) (int, int) {
	if total <= limit {
		return 0, total
	}
	start := current - 1 - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > total {
		start = total - limit
	}
	return start, start + limit
}
