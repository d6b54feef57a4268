package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// rebalanceInterval and consolidationCheckInterval are fixed per spec; only
// the decay interval is configurable.
const (
	rebalanceInterval          = time.Hour
	consolidationCheckInterval = 6 * time.Hour
)

// Scheduler runs the engine's three periodic maintenance tasks: decay,
// layer rebalancing, and threshold-triggered consolidation. Each task is
// independent; one failing iteration never stops the others.
type Scheduler struct {
	manager *Manager
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler for manager. Call Start to begin the
// background tasks and Stop to cancel them.
func NewScheduler(manager *Manager, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{manager: manager, logger: logger}
}

// Start launches the three maintenance tickers as goroutines, each
// cancellable via Stop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.runTask(ctx, "decay", s.manager.cfg.DecayInterval, func(taskCtx context.Context) {
		if err := s.manager.ApplyDecay(taskCtx); err != nil {
			s.logger.Warn("scheduled decay failed", "error", err)
		}
	})
	s.runTask(ctx, "rebalance", rebalanceInterval, func(taskCtx context.Context) {
		if err := s.manager.RebalanceLayers(taskCtx); err != nil {
			s.logger.Warn("scheduled rebalance failed", "error", err)
		}
	})
	s.runTask(ctx, "consolidation-check", consolidationCheckInterval, func(taskCtx context.Context) {
		s.checkConsolidation(taskCtx)
	})
}

func (s *Scheduler) runTask(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		interval = time.Hour
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runIteration(ctx, name, fn)
			}
		}
	}()
}

func (s *Scheduler) runIteration(ctx context.Context, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("scheduled task panicked", "task", name, "panic", r)
		}
	}()
	fn(ctx)
}

// checkConsolidation runs Consolidate against the short-term layer only
// when the count of short-term records exceeds the configured threshold.
func (s *Scheduler) checkConsolidation(ctx context.Context) {
	recs, err := s.manager.vstore.List(ctx, &models.SearchFilter{Layer: models.LayerShortTerm})
	if err != nil {
		s.logger.Warn("consolidation check: list failed", "error", err)
		return
	}
	if len(recs) <= s.manager.cfg.ConsolidationThreshold {
		return
	}

	_, err = s.manager.Consolidate(ctx, ConsolidateOptions{
		Layer:      models.LayerShortTerm,
		TargetSize: s.manager.cfg.ConsolidationThreshold,
	})
	if err != nil {
		s.logger.Warn("scheduled consolidation failed", "error", err)
	}
}

// Stop cancels all running tasks and waits for any in-flight iteration to
// finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
