package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'document_kind') THEN
			CREATE TYPE document_kind AS ENUM ('PDF', 'XLSX');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS booking_document (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id VARCHAR(64) NOT NULL,
		kind document_kind NOT NULL,
		file_name TEXT NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0,
		size_bytes BIGINT NOT NULL,
		checksum VARCHAR(64) NOT NULL,
		created_by_user_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_document_job_id ON booking_document (job_id);`,
	`CREATE INDEX IF NOT EXISTS idx_booking_document_created_at ON booking_document (created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
