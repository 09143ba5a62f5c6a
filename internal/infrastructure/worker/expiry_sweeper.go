package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ApprovalExpirer is the slice of the approval service the sweeper needs.
type ApprovalExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// ExpirySweeperConfig holds configuration for the expiry sweeper
type ExpirySweeperConfig struct {
	SweepInterval time.Duration
}

// DefaultExpirySweeperConfig returns default configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		SweepInterval: time.Minute,
	}
}

// ExpirySweeper periodically transitions pending approval requests whose
// expiry deadline passed. Expiry is detected lazily; this worker only bounds
// how long an overdue request can sit unexpired.
type ExpirySweeper struct {
	config    ExpirySweeperConfig
	approvals ApprovalExpirer
	logger    *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(config ExpirySweeperConfig, approvals ApprovalExpirer, logger *zap.Logger) *ExpirySweeper {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultExpirySweeperConfig().SweepInterval
	}
	return &ExpirySweeper{
		config:    config,
		approvals: approvals,
		logger:    logger,
	}
}

// Name implements Worker
func (w *ExpirySweeper) Name() string {
	return "approval-expiry-sweeper"
}

// Start implements Worker
func (w *ExpirySweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("expiry sweeper already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	go w.run(runCtx)
	return nil
}

// Stop implements Worker
func (w *ExpirySweeper) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return nil
	}
	w.isRunning = false
	w.cancel()
	<-w.done
	return nil
}

func (w *ExpirySweeper) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// One sweep up front so a restart catches requests that went overdue
	// while the process was down.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := w.approvals.ExpireOverdue(ctx)
	if err != nil {
		w.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		w.logger.Info("Expired overdue approval requests", zap.Int64("count", expired))
	}
}

// Verify interface compliance
var _ Worker = (*ExpirySweeper)(nil)
