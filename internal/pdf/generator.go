package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

var ErrMissingJobID = errors.New("job id is required")

// CodeGenerator rasterizes tracking codes. A nil result means the image is
// unavailable and the page is rendered without it.
type CodeGenerator interface {
	QRCodePNG(data string) []byte
	BarcodePNG(data string) []byte
}

type Options struct {
	CompanyName     string
	TrackingBaseURL string
	// Logger receives images that had to be left out. The zero value discards.
	Logger zerolog.Logger
}

type Generator struct {
	fontName string
	codes    CodeGenerator
	opts     Options
	now      func() time.Time
}

func NewGenerator(codes CodeGenerator, opts Options) (*Generator, error) {
	if codes == nil {
		return nil, fmt.Errorf("code generator is required")
	}
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = "Phoenix Shipper"
	}
	return &Generator{
		fontName: fontFamily,
		codes:    codes,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// FileName is the download name of a booking document.
func FileName(jobID string) string {
	return fmt.Sprintf("Phoenix_Shipper_Complete_%s.pdf", strings.TrimSpace(jobID))
}

// PageCount returns the number of pages Generate will produce for the job.
func (g *Generator) PageCount(job model.Job) int {
	return CountPages(job.Normalize())
}

// Generate renders the whole booking document. Pages are painted strictly in
// plan order on a single document; any failure aborts the document.
func (g *Generator) Generate(job model.Job, jobID, otp string) (content []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("generate booking pdf: %v", r)
		}
	}()

	content, err = g.generate(job, jobID, otp)
	if err != nil {
		return nil, fmt.Errorf("generate booking pdf: %w", err)
	}
	return content, nil
}

func (g *Generator) generate(job model.Job, jobID, otp string) ([]byte, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrMissingJobID
	}
	job = job.Normalize()
	if err := job.Validate(); err != nil {
		return nil, err
	}

	plan := BuildPlan(job)
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = g.now()
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle("Booking "+jobID, true)
	doc.SetAuthor(g.opts.CompanyName, true)
	doc.SetCreator(g.opts.CompanyName, true)
	if err := registerFonts(doc); err != nil {
		return nil, fmt.Errorf("register fonts: %w", err)
	}
	layout := NewLayout(doc, g.fontName)

	for _, page := range plan.Pages {
		pc := pageContext{
			doc:       doc,
			layout:    layout,
			plan:      plan,
			page:      page,
			total:     plan.Total,
			job:       job,
			jobID:     jobID,
			otp:       strings.TrimSpace(otp),
			createdAt: createdAt,
		}

		var err error
		switch page.Kind {
		case PageSummary:
			err = g.renderSummary(pc)
		case PagePickup:
			err = g.renderPickup(pc)
		case PageDelivery:
			err = g.renderDelivery(pc)
		default:
			err = fmt.Errorf("unknown page kind %d", page.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", page.Number, page.Kind, err)
		}
	}

	if doc.PageNo() != plan.Total {
		return nil, fmt.Errorf("rendered %d pages, planned %d", doc.PageNo(), plan.Total)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
