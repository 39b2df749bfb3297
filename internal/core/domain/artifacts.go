package domain

import (
	"encoding/json"
	"time"
)

// IntakeResponse is the questionnaire submitted when a migration is created.
type IntakeResponse struct {
	IntakeID                     string    `json:"intakeID"`
	MigrationID                  string    `json:"migrationID"`
	CurrentSoftware              string    `json:"currentSoftware"`
	TargetSoftware               string    `json:"targetSoftware"`
	Urgency                      Urgency   `json:"urgency"`
	DataPreservationRequirements []string  `json:"dataPreservationRequirements"`
	AdditionalNotes              *string   `json:"additionalNotes,omitempty"`
	CreatedAt                    time.Time `json:"createdAt"`
}

// FileUploadStatus tracks an uploaded export through parsing.
type FileUploadStatus string

const (
	FileStatusUploaded  FileUploadStatus = "uploaded"
	FileStatusProcessed FileUploadStatus = "processed"
	FileStatusFailed    FileUploadStatus = "failed"
)

// ExportFile is an uploaded legacy export attached to a migration.
type ExportFile struct {
	FileID       string           `json:"fileID"`
	MigrationID  string           `json:"migrationID"`
	Filename     string           `json:"filename"`
	FileSize     int64            `json:"fileSize"`
	ContentType  string           `json:"contentType"`
	StorageKey   string           `json:"storageKey"`
	UploadStatus FileUploadStatus `json:"uploadStatus"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// AnalysisType names the kind of analysis artifact.
type AnalysisType string

const (
	AnalysisTypeComplexity AnalysisType = "complexity_assessment"
)

// Analysis is a stored analysis artifact. Content is opaque JSON.
type Analysis struct {
	AnalysisID   string          `json:"analysisID"`
	MigrationID  string          `json:"migrationID"`
	AnalysisType AnalysisType    `json:"analysisType"`
	Content      json.RawMessage `json:"content"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ArtifactPresence summarizes which lifecycle artifacts exist for a migration.
type ArtifactPresence struct {
	HasIntake     bool `json:"hasIntake"`
	FileCount     int  `json:"fileCount"`
	AnalysisCount int  `json:"analysisCount"`
}
