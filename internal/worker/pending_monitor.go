package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pendingStale = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "consultation",
	Name:      "pending_stale",
	Help:      "Consultation requests still pending after the staleness threshold.",
})

// PendingMonitor periodically reports requests that stayed pending longer than
// staleAfter. It only reads from the store.
type PendingMonitor struct {
	store      ports.RequestStore
	interval   time.Duration
	staleAfter time.Duration
	sample     int
	now        func() time.Time
	gauge      prometheus.Gauge
	logger     *slog.Logger
}

func NewPendingMonitor(
	store ports.RequestStore,
	interval time.Duration,
	staleAfter time.Duration,
	sample int,
	logger *slog.Logger,
) *PendingMonitor {
	return &PendingMonitor{
		store:      store,
		interval:   interval,
		staleAfter: staleAfter,
		sample:     sample,
		now:        time.Now,
		gauge:      pendingStale,
		logger:     logger,
	}
}

func (m *PendingMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("starting pending monitor", "interval", m.interval, "stale_after", m.staleAfter)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stopping pending monitor")
			return
		case <-ticker.C:
			m.run(ctx)
		}
	}
}

// RunOnce executes a single scan and returns the number of stale requests found.
func (m *PendingMonitor) RunOnce(ctx context.Context) int {
	return m.run(ctx)
}

func (m *PendingMonitor) run(ctx context.Context) int {
	requests, err := m.store.List(ctx)
	if err != nil {
		m.logger.Error("failed to list consultation requests", "error", err)
		return 0
	}

	cutoff := m.now().Add(-m.staleAfter)

	var stale []*domain.ConsultationRequest
	for _, req := range requests {
		if req.Status == domain.StatusPending && req.Timestamp.Before(cutoff) {
			stale = append(stale, req)
		}
	}

	m.gauge.Set(float64(len(stale)))

	if len(stale) == 0 {
		return 0
	}

	ids := make([]int64, 0, m.sample)
	for i, req := range stale {
		if i >= m.sample {
			break
		}
		ids = append(ids, req.ID)
	}

	m.logger.Warn("consultation requests stuck in pending",
		"count", len(stale),
		"oldest_id", stale[0].ID,
		"oldest_at", stale[0].Timestamp,
		"sample_ids", ids,
	)
	return len(stale)
}
