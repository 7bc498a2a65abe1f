package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ordersight/ordersight/internal/observability"
)

// OrdersSource is the slice of the OMS client the sync loop needs.
type OrdersSource interface {
	ListOrders(ctx context.Context, page int, w Window) ([]OrderSummary, error)
	GetOrder(ctx context.Context, orderID string) (OrderDetail, error)
}

// Result summarises one sync run.
type Result struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Service drives the list-then-detail sync loop. A failed listing page aborts
// the run; a failed detail fetch only skips that order.
type Service struct {
	source  OrdersSource
	repo    Repository
	logger  *slog.Logger
	metrics *observability.Metrics
	delay   time.Duration
}

// NewService wires the sync loop. delay spaces consecutive detail requests so
// the run stays under the platform's rate limits.
func NewService(source OrdersSource, repo Repository, logger *slog.Logger, metrics *observability.Metrics, delay time.Duration) *Service {
	return &Service{
		source:  source,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		delay:   delay,
	}
}

// Run syncs every invoiced order inside the window.
func (s *Service) Run(ctx context.Context, w Window) (Result, error) {
	var res Result
	logger := s.logger.With(
		slog.Time("from", w.From),
		slog.Time("to", w.To),
	)
	logger.Info("starting order sync")

	for page := 1; ; page++ {
		summaries, err := s.source.ListOrders(ctx, page, w)
		if err != nil {
			return res, fmt.Errorf("ingest: %w", err)
		}
		if len(summaries) == 0 {
			break
		}
		logger.Info("processing listing page",
			slog.Int("page", page),
			slog.Int("orders", len(summaries)),
		)

		for _, summary := range summaries {
			order, err := s.source.GetOrder(ctx, summary.OrderID)
			if err != nil {
				logger.Warn("skipping order",
					slog.String("order_id", summary.OrderID),
					slog.Any("error", err),
				)
				res.Skipped++
				s.metrics.CountSyncOrder("skipped")
				continue
			}
			if err := s.repo.SaveOrder(ctx, order); err != nil {
				s.metrics.CountSyncOrder("failed")
				return res, fmt.Errorf("ingest: %w", err)
			}
			res.Processed++
			s.metrics.CountSyncOrder("processed")

			if err := s.pause(ctx); err != nil {
				return res, err
			}
		}
	}

	logger.Info("completed order sync",
		slog.Int("processed", res.Processed),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *Service) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
