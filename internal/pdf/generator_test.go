package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoenix-shipper/booking-docs/internal/codes"
	"github.com/phoenix-shipper/booking-docs/internal/model"
)

var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

type recordingCodes struct {
	qr       []string
	barcodes []string
	fail     bool
	raw      []byte
	inner    CodeGenerator
}

func (r *recordingCodes) QRCodePNG(data string) []byte {
	r.qr = append(r.qr, data)
	if r.fail {
		return nil
	}
	if r.raw != nil {
		return r.raw
	}
	return r.inner.QRCodePNG(data)
}

func (r *recordingCodes) BarcodePNG(data string) []byte {
	r.barcodes = append(r.barcodes, data)
	if r.fail {
		return nil
	}
	if r.raw != nil {
		return r.raw
	}
	return r.inner.BarcodePNG(data)
}

func sampleJob() model.Job {
	return model.Job{
		JobType:  model.JobTypeSingle,
		Vehicle:  model.Vehicle{Name: "Van", Capacity: "1 Tonne"},
		Customer: model.Customer{Name: "Alex Doe", Company: "Acme Pty Ltd", Email: "alex@example.com"},
		Pickups: []model.Location{{
			Company:      "Acme Warehouse",
			ContactName:  "Sam",
			Address:      "1 St",
			Suburb:       "X",
			Postcode:     "2000",
			Date:         "2024-05-01",
			Time:         "09:00",
			Instructions: "Dock 4",
		}},
		Deliveries: []model.Location{{Address: "2 Rd", Suburb: "Y", Postcode: "3000"}},
		PickupGoods: []*model.Goods{pallets(3)},
		DeliveryGoods: []*model.Goods{{
			Description: "Kitchen appliances",
			PackagingTypes: model.PackagingTypes{
				Pallets: &model.Packaging{
					Selected:   true,
					Quantity:   3,
					Weight:     decimal.NewFromInt(450),
					Dimensions: "120x100x150",
					Fragile:    true,
				},
			},
		}},
		Notes:     "Call on arrival",
		CreatedAt: time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC),
	}
}

func newTestGenerator(t *testing.T, fail bool) (*Generator, *recordingCodes) {
	t.Helper()
	rec := &recordingCodes{fail: fail, inner: codes.NewGenerator(zerolog.Nop())}
	g, err := NewGenerator(rec, Options{TrackingBaseURL: "https://track.example/jobs/"})
	require.NoError(t, err)
	return g, rec
}

func TestGenerate(t *testing.T) {
	g, rec := newTestGenerator(t, false)

	content, err := g.Generate(sampleJob(), "JOB-42", "1234")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Len(t, pageObject.FindAll(content, -1), 5)
	assert.Equal(t, 5, g.PageCount(sampleJob()))

	assert.Equal(t, []string{"JOB-42"}, rec.barcodes)
	assert.Equal(t, []string{
		"https://track.example/jobs/JOB-42?stop=pickup-1",
		"https://track.example/jobs/JOB-42?stop=delivery-1&unit=1",
		"https://track.example/jobs/JOB-42?stop=delivery-1&unit=2",
		"https://track.example/jobs/JOB-42?stop=delivery-1&unit=3",
	}, rec.qr)
}

func TestGenerateWithoutImages(t *testing.T) {
	g, rec := newTestGenerator(t, true)

	content, err := g.Generate(sampleJob(), "JOB-42", "")
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(content, -1), 5)
	assert.Len(t, rec.qr, 4)
}

func TestGenerateManyUnits(t *testing.T) {
	g, _ := newTestGenerator(t, false)
	job := sampleJob()
	job.DeliveryGoods[0].PackagingTypes.Boxes = &model.Packaging{Selected: true, Quantity: 25}

	content, err := g.Generate(job, "JOB-43", "9999")
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(content, -1), 1+1+28)
}

func TestGenerateEmptyJob(t *testing.T) {
	g, _ := newTestGenerator(t, false)
	content, err := g.Generate(model.Job{}, "JOB-1", "")
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(content, -1), 1)
}

func TestGenerateErrors(t *testing.T) {
	g, _ := newTestGenerator(t, false)

	_, err := g.Generate(sampleJob(), "  ", "1234")
	require.True(t, errors.Is(err, ErrMissingJobID))
	assert.ErrorContains(t, err, "generate booking pdf")

	job := sampleJob()
	job.JobType = "hover"
	_, err = g.Generate(job, "JOB-1", "1234")
	assert.ErrorContains(t, err, `generate booking pdf: unknown job type "hover"`)
}

func TestNewGeneratorRequiresCodes(t *testing.T) {
	_, err := NewGenerator(nil, Options{})
	require.Error(t, err)

	g, err := NewGenerator(codes.NewGenerator(zerolog.Nop()), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Phoenix Shipper", g.opts.CompanyName)
}

func TestTrackingPayload(t *testing.T) {
	g := &Generator{}
	unit := &model.PackagingUnit{Number: 2}
	assert.Equal(t, "PHOENIX|JOB 1|PICKUP-1", g.trackingPayload("JOB 1", PagePickup, 0, nil))
	assert.Equal(t, "PHOENIX|JOB 1|DELIVERY-3|UNIT-2", g.trackingPayload("JOB 1", PageDelivery, 2, unit))

	g.opts.TrackingBaseURL = "https://t.example/"
	assert.Equal(t, "https://t.example/JOB%201?stop=delivery-3&unit=2", g.trackingPayload("JOB 1", PageDelivery, 2, unit))
}

func TestFooterAndFileName(t *testing.T) {
	assert.Equal(t, "Job ID: JOB-1 | Delivery 1 - Y | Page 3 of 5", FooterText("JOB-1", "Delivery 1 - Y", 3, 5))
	assert.Equal(t, "Phoenix_Shipper_Complete_JOB-1.pdf", FileName(" JOB-1 "))
}

func TestGenerateSkipsUnusableImages(t *testing.T) {
	sixteenBit := new(bytes.Buffer)
	require.NoError(t, png.Encode(sixteenBit, image.NewGray16(image.Rect(0, 0, 8, 8))))

	for name, raw := range map[string][]byte{
		"not a png":  []byte("not a png"),
		"16-bit png": sixteenBit.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := &recordingCodes{raw: raw, inner: codes.NewGenerator(zerolog.Nop())}
			g, err := NewGenerator(rec, Options{Logger: zerolog.New(&logs)})
			require.NoError(t, err)

			content, err := g.Generate(sampleJob(), "JOB-42", "1234")
			require.NoError(t, err)
			assert.Len(t, pageObject.FindAll(content, -1), 5)
			assert.Contains(t, logs.String(), "image skipped")
		})
	}
}

func TestGenerateUnicodeText(t *testing.T) {
	g, _ := newTestGenerator(t, false)
	job := sampleJob()
	job.Customer.Name = "Zoë Ånström"
	job.Pickups[0].Company = "Москва Логистик"
	job.Pickups[0].Instructions = "Ring twice 📦, ask for Łukasz"
	job.Notes = "Café délivery – fragile"

	content, err := g.Generate(job, "JOB-44", "1234")
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(content, -1), 5)
	assert.Contains(t, string(content), "FontFile2")
}

func TestGenerateCrowdedJob(t *testing.T) {
	g, _ := newTestGenerator(t, false)
	job := sampleJob()
	job.JobType = model.JobTypeMultiPickup
	long := strings.Repeat("Use the loading dock behind the building and call the site manager first. ", 60)
	job.Pickups = make([]model.Location, 40)
	job.PickupGoods = make([]*model.Goods, 40)
	for i := range job.Pickups {
		job.Pickups[i] = model.Location{
			Company:      fmt.Sprintf("Supplier %d", i+1),
			Address:      fmt.Sprintf("%d Industrial Road", i+1),
			Suburb:       "Parramatta",
			Postcode:     "2150",
			Instructions: long,
		}
		job.PickupGoods[i] = pallets(1)
	}
	job.Deliveries[0].Instructions = long

	content, err := g.Generate(job, "JOB-45", "1234")
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(content, -1), 1+40+3)
	assert.Equal(t, 1+40+3, g.PageCount(job))
}
