package jobs

import (
	"context"
	"log/slog"

	"tracking/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// PositionCheckpointJob periodically persists the latest cached courier
// positions. Routine ticks only touch the cache; this job is the sole writer
// of positions to the database, so the write rate is bounded by the schedule
// rather than by fleet size times tick rate.
type PositionCheckpointJob struct {
	handler commands.CheckpointPositionsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewPositionCheckpointJob creates the checkpoint job.
func NewPositionCheckpointJob(
	handler commands.CheckpointPositionsCommandHandler,
	logger *slog.Logger,
) *PositionCheckpointJob {
	return &PositionCheckpointJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "position_checkpoint_job"),
	}
}

// Start begins the checkpoint job on a 20 second schedule.
func (j *PositionCheckpointJob) Start() error {
	_, err := j.cron.AddFunc("*/20 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewCheckpointPositionsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Position checkpoint failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Position checkpoint job started (running every 20 seconds)")
	return nil
}

// Stop stops the checkpoint job.
func (j *PositionCheckpointJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Position checkpoint job stopped")
}
