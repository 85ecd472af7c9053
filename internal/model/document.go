package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	DocumentKindPDF      DocumentKind = "PDF"
	DocumentKindManifest DocumentKind = "XLSX"
)

// DocumentRecord is the audit row written for every generated artifact.
type DocumentRecord struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	JobID           string       `gorm:"column:job_id;size:64;index" json:"job_id"`
	Kind            DocumentKind `gorm:"column:kind;size:8" json:"kind"`
	FileName        string       `gorm:"column:file_name" json:"file_name"`
	PageCount       int          `gorm:"column:page_count" json:"page_count"`
	SizeBytes       int64        `gorm:"column:size_bytes" json:"size_bytes"`
	Checksum        string       `gorm:"column:checksum;size:64" json:"checksum"`
	CreatedByUserID *uuid.UUID   `gorm:"column:created_by_user_id;type:uuid" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time    `gorm:"column:created_at" json:"created_at"`
}

func (DocumentRecord) TableName() string {
	return "booking_document"
}
