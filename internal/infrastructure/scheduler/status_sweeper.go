package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appbilling "github.com/invoicing/backend/internal/application/billing"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StatusSweeper periodically runs the automated invoice status update. It is
// the background counterpart of the manual update-all endpoint; overlapping
// runs are rejected by the status service itself.
type StatusSweeper struct {
	config        config.SweepConfig
	statusService *appbilling.InvoiceStatusService
	logger        *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt  *time.Time
	lastResult *appbilling.SweepResult
}

// NewStatusSweeper creates a new StatusSweeper
func NewStatusSweeper(cfg config.SweepConfig, statusService *appbilling.InvoiceStatusService, logger *zap.Logger) *StatusSweeper {
	return &StatusSweeper{
		config:        cfg,
		statusService: statusService,
		logger:        logger,
	}
}

// Start starts the sweep loop. The first sweep runs immediately, subsequent
// sweeps run on the configured interval.
func (s *StatusSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.sweepLoop(ctx)

	s.logger.Info("Status sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (s *StatusSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Status sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Status sweeper stop timed out")
		return ctx.Err()
	}
}

// GetStatus returns the current sweeper status
func (s *StatusSweeper) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":        s.config.Enabled,
		"is_running":     s.isRunning,
		"check_interval": s.config.CheckInterval.String(),
		"last_run_at":    s.lastRunAt,
		"last_result":    s.lastResult,
	}
}

func (s *StatusSweeper) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	s.runSweep(ctx)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *StatusSweeper) runSweep(ctx context.Context) {
	now := time.Now()

	result, err := s.statusService.RunAutomatedStatusUpdate(ctx)
	if err != nil {
		if errors.Is(err, appbilling.ErrSweepInProgress) {
			s.logger.Debug("Skipping sweep, previous run still in progress")
			return
		}
		s.logger.Error("Automated status update failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastRunAt = &now
	s.lastResult = result
	s.mu.Unlock()
}
