package jobs

import (
	"context"
	"log/slog"

	"tracking/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ETARefreshJob periodically refreshes the estimates of all active orders.
// Between lifecycle events this is what moves estimates: traffic penalties
// decay and courier positions shorten the remaining legs.
type ETARefreshJob struct {
	handler commands.RefreshActiveETAsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewETARefreshJob creates the refresh job.
func NewETARefreshJob(handler commands.RefreshActiveETAsCommandHandler, logger *slog.Logger) *ETARefreshJob {
	return &ETARefreshJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "eta_refresh_job"),
	}
}

// Start begins the refresh job on a 30 second schedule.
func (j *ETARefreshJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewRefreshActiveETAsCommand()

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "ETA refresh sweep failed", "error", err)
			return
		}
		if result.Failed > 0 {
			j.logger.WarnContext(ctx, "ETA refresh sweep finished with failures",
				"refreshed", result.Refreshed,
				"changed", result.Changed,
				"failed", result.Failed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "ETA refresh job started (running every 30 seconds)")
	return nil
}

// Stop stops the refresh job.
func (j *ETARefreshJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "ETA refresh job stopped")
}
