package models

// MigrationJob is the row shape of the migrations table.
type MigrationJob struct {
	MigrationID         string  `db:"migration_id"`
	UserID              string  `db:"user_id"`
	Status              string  `db:"status"`
	SourceSoftware      string  `db:"source_software"`
	TargetSoftware      string  `db:"target_software"`
	Urgency             string  `db:"urgency"`
	SourceFilename      *string `db:"source_filename"`
	TotalRows           int     `db:"total_rows"`
	RequiresReviewCount int     `db:"requires_review_count"`
	ErrorMessage        *string `db:"error_message"`
	AuditFields
}
