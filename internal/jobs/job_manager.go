package jobs

import (
	"fmt"
	"log/slog"

	"tracking/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	etaRefreshJob         *ETARefreshJob
	positionCheckpointJob *PositionCheckpointJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	refreshHandler commands.RefreshActiveETAsCommandHandler,
	checkpointHandler commands.CheckpointPositionsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		etaRefreshJob:         NewETARefreshJob(refreshHandler, logger),
		positionCheckpointJob: NewPositionCheckpointJob(checkpointHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.etaRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start ETA refresh job: %w", err)
	}

	if err := jm.positionCheckpointJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.etaRefreshJob.Stop()
		return fmt.Errorf("failed to start position checkpoint job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.positionCheckpointJob.Stop()
	jm.etaRefreshJob.Stop()
}
