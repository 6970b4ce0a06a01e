package usecase

import (
	"context"
	"log/slog"
	"time"

	"GoldenTickets/internal/ports"
)

// Scheduler wires the periodic driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	location *time.Location
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs. Trigger times
// are moved into loc before they reach the pipeline.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, location: loc, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report, err := s.pipeline.Run(ctx, trigger.In(s.location))
		if err != nil {
			s.logger.Error("scheduled run failed", "run_id", report.RunID, "stage", report.Stage, "error", err)
			return
		}
		s.logger.Info("scheduled run done",
			"run_id", report.RunID,
			"created", len(report.Created),
			"deleted", len(report.Deleted),
			"unassigned", len(report.Unassigned))
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
