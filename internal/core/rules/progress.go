package rules

import (
	"fmt"
	"math"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

const defaultDaysPerStep = 2.0

// TrackerConfig configures the lifecycle tracker's time estimate.
type TrackerConfig struct {
	DaysPerStep        float64
	UrgencyMultipliers map[domain.Urgency]float64
}

// DefaultTrackerConfig returns the standard urgency multipliers.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		DaysPerStep: defaultDaysPerStep,
		UrgencyMultipliers: map[domain.Urgency]float64{
			domain.UrgencyLow:      1.5,
			domain.UrgencyMedium:   1.0,
			domain.UrgencyHigh:     0.7,
			domain.UrgencyCritical: 0.5,
		},
	}
}

// LifecycleTracker derives human-facing progress from artifact presence.
// It does not decide job status.
type LifecycleTracker struct {
	cfg TrackerConfig
}

// NewLifecycleTracker creates a tracker.
func NewLifecycleTracker(cfg TrackerConfig) *LifecycleTracker {
	if cfg.DaysPerStep <= 0 {
		cfg.DaysPerStep = defaultDaysPerStep
	}
	if cfg.UrgencyMultipliers == nil {
		cfg.UrgencyMultipliers = DefaultTrackerConfig().UrgencyMultipliers
	}
	return &LifecycleTracker{cfg: cfg}
}

func (t *LifecycleTracker) multiplier(u domain.Urgency) float64 {
	if m, ok := t.cfg.UrgencyMultipliers[u]; ok {
		return m
	}
	return 1.0
}

// Compute derives progress for a job. Each checkpoint is checked on its own;
// artifacts may appear in any order.
func (t *LifecycleTracker) Compute(job domain.MigrationJob, artifacts domain.ArtifactPresence) domain.Progress {
	intake := artifacts.HasIntake
	files := artifacts.FileCount > 0
	analysis := artifacts.AnalysisCount > 0
	completed := job.Status == domain.JobStatusCompleted

	steps := 0
	for _, done := range []bool{intake, files, analysis, completed} {
		if done {
			steps++
		}
	}

	progress := domain.Progress{
		Percentage:     int(math.Round(float64(steps) / domain.TotalProgressSteps * 100)),
		CompletedSteps: steps,
		TotalSteps:     domain.TotalProgressSteps,
	}

	switch {
	case completed:
		progress.CurrentStep = domain.StepMigrationComplete
	case analysis:
		progress.CurrentStep = domain.StepAnalysisComplete
	case files:
		progress.CurrentStep = domain.StepFilesUploaded
	case intake:
		progress.CurrentStep = domain.StepIntakeSubmitted
	default:
		progress.CurrentStep = domain.StepGettingStarted
	}

	if !completed {
		remaining := domain.TotalProgressSteps - steps
		days := int(math.Ceil(float64(remaining) * t.cfg.DaysPerStep * t.multiplier(job.Urgency)))
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		eta := fmt.Sprintf("%d %s", days, unit)
		progress.EstimatedTimeRemaining = &eta
	}
	return progress
}
