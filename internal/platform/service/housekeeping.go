package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService is the periodic background worker. It re-runs the
// root-admin invariant check off the request path and purges stale failed
// document imports so the table does not grow without bound.
type HousekeepingService struct {
	Monitor   *RootAdminMonitor
	Documents *DocumentService
	Logger    *slog.Logger
	Interval  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. If interval is 0 or negative,
// defaults to 1 hour.
func NewHousekeepingService(monitor *RootAdminMonitor, documents *DocumentService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Monitor:   monitor,
		Documents: documents,
		Logger:    logger,
		Interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker and blocks until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once immediately so the invariant is verified at startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep performs one housekeeping pass. Each task is independent; a failure
// in one does not stop the others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	s.Logger.Info("starting housekeeping sweep")

	s.Monitor.Ensure(ctx, "housekeeping")

	if err := s.Documents.PurgeStaleFailed(ctx); err != nil {
		s.Logger.Error("failed to purge stale failed documents", "error", err)
	} else {
		s.Logger.Debug("purged stale failed documents")
	}

	s.Logger.Info("housekeeping sweep completed")
}
