package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores a document record, assigning its ID and timestamp when unset.
func (r *DocumentRepository) Create(ctx context.Context, record *model.DocumentRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByJob returns the records of a job, newest first.
func (r *DocumentRepository) ListByJob(ctx context.Context, jobID string) ([]model.DocumentRecord, error) {
	var records []model.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("job_id = ?", strings.TrimSpace(jobID)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetLatest returns the newest record of the given kind for a job.
func (r *DocumentRepository) GetLatest(ctx context.Context, jobID string, kind model.DocumentKind) (*model.DocumentRecord, error) {
	var record model.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND kind = ?", strings.TrimSpace(jobID), kind).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
