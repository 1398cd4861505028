// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3 and coordinated through JobManager.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// DefaultStalledThreshold is how long an order may sit in the processing
// state before the monitor reports it.
const DefaultStalledThreshold = 30 * time.Second

// StalledOrderJob periodically reports orders stuck in the processing state.
// A stuck order usually means a worker died mid-task and the broker has not
// redelivered yet. The job only observes; redelivery is the broker's job.
type StalledOrderJob struct {
	handler   queries.GetStalledOrdersQueryHandler
	threshold time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewStalledOrderJob creates a monitor job running every 30 seconds.
// A non-positive threshold falls back to DefaultStalledThreshold.
func NewStalledOrderJob(
	handler queries.GetStalledOrdersQueryHandler,
	threshold time.Duration,
	logger *slog.Logger,
) *StalledOrderJob {
	if threshold <= 0 {
		threshold = DefaultStalledThreshold
	}

	return &StalledOrderJob{
		handler:   handler,
		threshold: threshold,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "stalled_order_job"),
	}
}

// Start begins the stalled order monitor, running every 30 seconds.
func (j *StalledOrderJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		query, err := queries.NewGetStalledOrdersQuery(j.threshold)
		if err != nil {
			j.logger.ErrorContext(ctx, "Stalled order job misconfigured", "error", err)
			return
		}

		stalled, err := j.handler.Handle(ctx, query)
		if err != nil {
			j.logger.ErrorContext(ctx, "Stalled order job failed", "error", err)
			return
		}

		for _, o := range stalled {
			j.logger.WarnContext(ctx, "Order stuck in processing",
				"order_id", o.ID.Int64(),
				"updated_at", o.UpdatedAt,
				"stalled_for", time.Since(o.UpdatedAt).String(),
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stalled order job started (running every 30 seconds)")
	return nil
}

// Stop stops the stalled order monitor.
func (j *StalledOrderJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stalled order job stopped")
}
