// Package jobs provides scheduled background tasks for the tracking engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic work the engine needs between lifecycle events.
//
// # Available Jobs
//
// 1. ETARefreshJob - Runs every 30 seconds to refresh estimates of active
// orders, so traffic decay and courier movement reach subscribers without
// waiting for the next lifecycle event
// 2. PositionCheckpointJob - Runs every 20 seconds to persist the latest
// cached courier positions, decimating the high-rate tick stream before it
// reaches the database
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(refreshHandler, checkpointHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Both jobs log failures and wait for the next scheduled run
// - Failed job starts will stop any already running jobs
package jobs
