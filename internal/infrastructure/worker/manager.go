package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker is a long-running background task tied to the server's lifetime,
// such as the approval expiry sweeper.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// WorkerManager starts and stops the registered workers as a group.
type WorkerManager struct {
	workers []Worker
	logger  *zap.Logger

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{logger: logger}
}

// Register adds a worker. Registration after StartAll has no effect on the
// running group.
func (m *WorkerManager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	m.logger.Info("Background worker registered", zap.String("worker", w.Name()))
}

// StartAll starts every registered worker. If one fails to start, the ones
// already running are stopped and the error is returned.
func (m *WorkerManager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return fmt.Errorf("workers already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.isRunning = true
	m.mu.Unlock()

	var started []Worker
	for _, w := range m.workers {
		if err := w.Start(runCtx); err != nil {
			m.logger.Error("Failed to start background worker",
				zap.String("worker", w.Name()),
				zap.Error(err))
			cancel()
			_ = m.stopStarted(started)
			m.mu.Lock()
			m.isRunning = false
			m.mu.Unlock()
			return fmt.Errorf("start worker %s: %w", w.Name(), err)
		}
		started = append(started, w)
		m.logger.Info("Background worker started", zap.String("worker", w.Name()))
	}
	return nil
}

// StopAll stops every worker and waits for each to finish. Stopping an
// idle manager is a no-op.
func (m *WorkerManager) StopAll() error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return m.stopStarted(m.workers)
}

func (m *WorkerManager) stopStarted(workers []Worker) error {
	var errs []error
	for _, w := range workers {
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop background worker",
				zap.String("worker", w.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("stop worker %s: %w", w.Name(), err))
			continue
		}
		m.logger.Info("Background worker stopped", zap.String("worker", w.Name()))
	}
	return errors.Join(errs...)
}

// GetWorkerCount returns the number of registered workers
func (m *WorkerManager) GetWorkerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers)
}

// IsRunning returns whether workers are running
func (m *WorkerManager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}
