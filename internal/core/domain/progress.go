package domain

// Progress checkpoint labels.
const (
	StepMigrationComplete = "Migration Complete"
	StepAnalysisComplete  = "AI Analysis Complete"
	StepFilesUploaded     = "Files Uploaded"
	StepIntakeSubmitted   = "Intake Submitted"
	StepGettingStarted    = "Getting Started"
)

// TotalProgressSteps is the number of lifecycle checkpoints.
const TotalProgressSteps = 4

// Progress is recomputed from artifact presence on every read.
type Progress struct {
	Percentage             int     `json:"percentage"`
	CurrentStep            string  `json:"currentStep"`
	CompletedSteps         int     `json:"completedSteps"`
	TotalSteps             int     `json:"totalSteps"`
	EstimatedTimeRemaining *string `json:"estimatedTimeRemaining"`
}

// MigrationWithProgress pairs a job with its derived progress for listings.
type MigrationWithProgress struct {
	Migration MigrationJob `json:"migration"`
	Progress  Progress     `json:"progress"`
}

// MigrationDetail is the full lifecycle view of one migration.
type MigrationDetail struct {
	Migration MigrationJob    `json:"migration"`
	Intake    *IntakeResponse `json:"intake,omitempty"`
	Files     []ExportFile    `json:"files"`
	Analyses  []Analysis      `json:"analyses"`
	Progress  Progress        `json:"progress"`
}
