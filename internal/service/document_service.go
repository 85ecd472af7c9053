package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phoenix-shipper/booking-docs/internal/cache"
	"github.com/phoenix-shipper/booking-docs/internal/excel"
	"github.com/phoenix-shipper/booking-docs/internal/model"
	"github.com/phoenix-shipper/booking-docs/internal/pdf"
)

type PDFRenderer interface {
	Generate(job model.Job, jobID, otp string) ([]byte, error)
	PageCount(job model.Job) int
}

type ManifestRenderer interface {
	Generate(job model.Job, jobID string) ([]byte, error)
}

type DocumentStore interface {
	Create(ctx context.Context, record *model.DocumentRecord) error
	ListByJob(ctx context.Context, jobID string) ([]model.DocumentRecord, error)
	GetLatest(ctx context.Context, jobID string, kind model.DocumentKind) (*model.DocumentRecord, error)
}

// Alerter delivers a user-facing message.
type Alerter interface {
	Alert(message string)
}

type AlerterFunc func(message string)

func (f AlerterFunc) Alert(message string) { f(message) }

type DocumentService struct {
	pdf      PDFRenderer
	manifest ManifestRenderer
	store    DocumentStore
	cache    cache.DocumentCache
	alerter  Alerter
	log      zerolog.Logger
}

type GenerateInput struct {
	JobID     string
	OTP       string
	Job       model.Job
	Principal *model.Principal
}

type GenerateResult struct {
	FileName  string
	Content   []byte
	PageCount int
	Checksum  string
	Cached    bool
}

// NewDocumentService wires the renderers with optional persistence. A nil
// store skips audit records, a nil cache disables caching and a nil alerter
// drops alerts.
func NewDocumentService(
	pdfRenderer PDFRenderer,
	manifest ManifestRenderer,
	store DocumentStore,
	docCache cache.DocumentCache,
	alerter Alerter,
	log zerolog.Logger,
) *DocumentService {
	if docCache == nil {
		docCache = cache.NopCache{}
	}
	if alerter == nil {
		alerter = AlerterFunc(func(string) {})
	}
	return &DocumentService{
		pdf:      pdfRenderer,
		manifest: manifest,
		store:    store,
		cache:    docCache,
		alerter:  alerter,
		log:      log,
	}
}

func (s *DocumentService) GenerateBookingPDF(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	job, jobID, err := prepare(input)
	if err != nil {
		return nil, err
	}
	otp := strings.TrimSpace(input.OTP)
	fileName := pdf.FileName(jobID)

	key, err := cacheKey(job, jobID, otp)
	if err != nil {
		return nil, err
	}
	if content, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("document cache lookup failed")
	} else if ok {
		return &GenerateResult{
			FileName:  fileName,
			Content:   content,
			PageCount: s.pdf.PageCount(job),
			Checksum:  checksum(content),
			Cached:    true,
		}, nil
	}

	content, err := s.pdf.Generate(job, jobID, otp)
	if err != nil {
		return nil, err
	}
	result := &GenerateResult{
		FileName:  fileName,
		Content:   content,
		PageCount: s.pdf.PageCount(job),
		Checksum:  checksum(content),
	}

	if err := s.cache.Set(ctx, key, content); err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("document cache store failed")
	}
	s.record(ctx, input.Principal, jobID, model.DocumentKindPDF, result)

	s.log.Info().
		Str("job_id", jobID).
		Int("pages", result.PageCount).
		Int("bytes", len(content)).
		Msg("booking pdf generated")
	return result, nil
}

func (s *DocumentService) GenerateManifest(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	if input.Principal != nil && !canReadRecords(*input.Principal) {
		return nil, ErrPermissionDenied
	}
	job, jobID, err := prepare(input)
	if err != nil {
		return nil, err
	}

	content, err := s.manifest.Generate(job, jobID)
	if err != nil {
		return nil, fmt.Errorf("generate manifest: %w", err)
	}
	result := &GenerateResult{
		FileName:  excel.FileName(jobID),
		Content:   content,
		PageCount: s.pdf.PageCount(job),
		Checksum:  checksum(content),
	}
	s.record(ctx, input.Principal, jobID, model.DocumentKindManifest, result)
	return result, nil
}

// DownloadBookingPDF renders the booking document into dir. Every failure is
// logged and reported to the user through the alerter.
func (s *DocumentService) DownloadBookingPDF(ctx context.Context, input GenerateInput, dir string) bool {
	result, err := s.GenerateBookingPDF(ctx, input)
	if err == nil {
		path := filepath.Join(dir, result.FileName)
		if err = os.WriteFile(path, result.Content, 0o644); err == nil {
			s.log.Info().Str("path", path).Msg("booking pdf saved")
			return true
		}
	}

	s.log.Error().Err(err).Str("job_id", input.JobID).Msg("booking pdf download failed")
	s.alerter.Alert(PDFFailureMessage)
	return false
}

func (s *DocumentService) ListDocuments(ctx context.Context, principal model.Principal, jobID string) ([]model.DocumentRecord, error) {
	if !canReadRecords(principal) {
		return nil, ErrPermissionDenied
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("%w: job_id is required", ErrInvalidInput)
	}
	if s.store == nil {
		return nil, ErrNotFound
	}

	records, err := s.store.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// LatestDocument returns the newest record of one kind for a job.
func (s *DocumentService) LatestDocument(ctx context.Context, principal model.Principal, jobID string, kind model.DocumentKind) (*model.DocumentRecord, error) {
	if !canReadRecords(principal) {
		return nil, ErrPermissionDenied
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("%w: job_id is required", ErrInvalidInput)
	}
	switch kind {
	case model.DocumentKindPDF, model.DocumentKindManifest:
	default:
		return nil, fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, kind)
	}
	if s.store == nil {
		return nil, ErrNotFound
	}

	record, err := s.store.GetLatest(ctx, jobID, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// canReadRecords reports whether the role may see manifests and audit rows.
func canReadRecords(p model.Principal) bool {
	return p.IsAdmin() || p.IsDriver()
}

func (s *DocumentService) record(ctx context.Context, principal *model.Principal, jobID string, kind model.DocumentKind, result *GenerateResult) {
	if s.store == nil {
		return
	}
	record := &model.DocumentRecord{
		JobID:     jobID,
		Kind:      kind,
		FileName:  result.FileName,
		PageCount: result.PageCount,
		SizeBytes: int64(len(result.Content)),
		Checksum:  result.Checksum,
	}
	if principal != nil {
		userID := principal.UserID
		record.CreatedByUserID = &userID
	}
	if err := s.store.Create(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Str("kind", string(kind)).Msg("document record not saved")
	}
}

func prepare(input GenerateInput) (model.Job, string, error) {
	jobID := strings.TrimSpace(input.JobID)
	if jobID == "" {
		return model.Job{}, "", fmt.Errorf("%w: job_id is required", ErrInvalidInput)
	}
	job := input.Job.Normalize()
	if err := job.Validate(); err != nil {
		return model.Job{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return job, jobID, nil
}

func cacheKey(job model.Job, jobID, otp string) (string, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	sum := sha256.New()
	sum.Write(payload)
	sum.Write([]byte{0})
	sum.Write([]byte(otp))
	return jobID + ":" + hex.EncodeToString(sum.Sum(nil)), nil
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
