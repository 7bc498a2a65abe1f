package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ordersight/ordersight/internal/ingest"
)

// SyncService runs one ingestion pass over an invoiced-date window.
type SyncService interface {
	Run(ctx context.Context, w ingest.Window) (ingest.Result, error)
}

// OrdersSyncJob executes order sync tasks.
type OrdersSyncJob struct {
	Service    SyncService
	Logger     *slog.Logger
	WindowDays int
	clock      func() time.Time
}

// NewOrdersSyncJob wires the sync handler. windowDays is the lookback used
// when a task carries no explicit window, as cron-scheduled runs do.
func NewOrdersSyncJob(service SyncService, logger *slog.Logger, windowDays int) *OrdersSyncJob {
	if windowDays <= 0 {
		windowDays = 1
	}
	return &OrdersSyncJob{
		Service:    service,
		Logger:     logger,
		WindowDays: windowDays,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one order sync task.
func (j *OrdersSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("orders sync: handler not configured")
	}
	var payload OrdersSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	window := j.window(payload)
	logger := j.logger().With(
		slog.String("run_id", payload.RunID.String()),
		slog.Time("from", window.From),
		slog.Time("to", window.To),
	)
	logger.Info("starting orders sync task")

	start := j.clock()
	result, err := j.Service.Run(ctx, window)
	if err != nil {
		logger.Error("orders sync failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed orders sync task",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", j.clock().Sub(start)),
	)
	return nil
}

func (j *OrdersSyncJob) window(payload OrdersSyncPayload) ingest.Window {
	if !payload.From.IsZero() && !payload.To.IsZero() {
		return ingest.Window{From: payload.From, To: payload.To}
	}
	now := j.clock()
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -j.WindowDays)
	return ingest.Window{From: start, To: end}
}

func (j *OrdersSyncJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
