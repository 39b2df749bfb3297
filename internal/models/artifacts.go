package models

import "time"

// IntakeResponse is the row shape of the intake_responses table.
type IntakeResponse struct {
	IntakeID                     string    `db:"intake_id"`
	MigrationID                  string    `db:"migration_id"`
	CurrentSoftware              string    `db:"current_software"`
	TargetSoftware               string    `db:"target_software"`
	Urgency                      string    `db:"urgency"`
	DataPreservationRequirements []string  `db:"data_preservation_requirements"`
	AdditionalNotes              *string   `db:"additional_notes"`
	CreatedAt                    time.Time `db:"created_at"`
}

// ExportFile is the row shape of the export_files table.
type ExportFile struct {
	FileID       string    `db:"file_id"`
	MigrationID  string    `db:"migration_id"`
	Filename     string    `db:"filename"`
	FileSize     int64     `db:"file_size"`
	ContentType  string    `db:"content_type"`
	StorageKey   string    `db:"storage_key"`
	UploadStatus string    `db:"upload_status"`
	CreatedAt    time.Time `db:"created_at"`
}

// Analysis is the row shape of the migration_analyses table.
type Analysis struct {
	AnalysisID   string    `db:"analysis_id"`
	MigrationID  string    `db:"migration_id"`
	AnalysisType string    `db:"analysis_type"`
	Content      []byte    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
}
