package analytics

import (
	"context"
	"log/slog"
	"time"
)

// Refresher keeps the dashboard snapshot warm so the first request after a
// cache rollover never pays the aggregation cost.
type Refresher struct {
	agg      *Aggregator
	interval time.Duration
	logger   *slog.Logger
}

// NewRefresher constructs a Refresher. A non-positive interval defaults
// to 15 minutes.
func NewRefresher(agg *Aggregator, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{agg: agg, interval: interval, logger: logger}
}

// Start runs the refresh loop. It blocks until ctx is cancelled. Call it in a
// goroutine from main:
//
//	go refresher.Start(ctx)
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("analytics: refresher starting", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Warm the cache immediately on startup.
	r.refreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("analytics: refresher stopped")
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	if _, err := r.agg.Dashboard(ctx); err != nil {
		r.logger.Error("analytics: refresh failed", "error", err)
	}
}
