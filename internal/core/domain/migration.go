package domain

import "strings"

// JobStatus is the parse-phase status of a migration job.
type JobStatus string

const (
	JobStatusPending        JobStatus = "pending"
	JobStatusParsing        JobStatus = "parsing"
	JobStatusReviewRequired JobStatus = "review_required"
	JobStatusParsed         JobStatus = "parsed"
	JobStatusError          JobStatus = "error"
	JobStatusCompleted      JobStatus = "completed"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:        {JobStatusParsing},
	JobStatusError:          {JobStatusParsing},
	JobStatusParsing:        {JobStatusParsed, JobStatusReviewRequired, JobStatusError},
	JobStatusReviewRequired: {JobStatusParsed},
	JobStatusParsed:         {JobStatusCompleted},
}

// CanTransition reports whether a job may move from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseSourceStatuses lists the statuses a job may start parsing from.
func ParseSourceStatuses() []JobStatus {
	var out []JobStatus
	for _, s := range []JobStatus{JobStatusPending, JobStatusError} {
		if s.CanTransition(JobStatusParsing) {
			out = append(out, s)
		}
	}
	return out
}

// Urgency drives the completion estimate.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ParseUrgency normalizes raw to a lowercase urgency. The result may be invalid.
func ParseUrgency(raw string) Urgency {
	return Urgency(strings.ToLower(strings.TrimSpace(raw)))
}

// IsValid reports whether u is one of the known urgency levels.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// MigrationJob is one migration of a legacy ledger into a target system.
type MigrationJob struct {
	MigrationID         string    `json:"migrationID"`
	UserID              string    `json:"userID"`
	Status              JobStatus `json:"status"`
	SourceSoftware      string    `json:"sourceSoftware"`
	TargetSoftware      string    `json:"targetSoftware"`
	Urgency             Urgency   `json:"urgency"`
	SourceFilename      *string   `json:"sourceFilename,omitempty"`
	TotalRows           int       `json:"totalRows"`
	RequiresReviewCount int       `json:"requiresReviewCount"`
	ErrorMessage        *string   `json:"errorMessage,omitempty"`
	AuditFields
}

// ParseOutcome is what a successful parse writes back to the job in one unit.
type ParseOutcome struct {
	MigrationID    string
	FileID         string
	SourceFilename string
	Entities       []MigrationEntity
	Summary        ParseSummary
	Assessment     ComplexityAssessment
	UserID         string
}

// FinalStatus is review_required when any entity was flagged, parsed otherwise.
func (o ParseOutcome) FinalStatus() JobStatus {
	if o.Summary.RequiresReview > 0 {
		return JobStatusReviewRequired
	}
	return JobStatusParsed
}
