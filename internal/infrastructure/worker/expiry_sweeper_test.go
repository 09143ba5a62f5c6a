package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockExpirer struct {
	calls       atomic.Int64
	expireFunc  func(ctx context.Context) (int64, error)
	lastExpired int64
}

func (m *mockExpirer) ExpireOverdue(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.expireFunc != nil {
		return m.expireFunc(ctx)
	}
	return m.lastExpired, nil
}

func TestExpirySweeper_SweepsOnStart(t *testing.T) {
	expirer := &mockExpirer{lastExpired: 2}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: time.Hour}, expirer, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	defer sweeper.Stop()

	// The upfront sweep runs immediately after Start, before the first tick.
	assert.Eventually(t, func() bool {
		return expirer.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestExpirySweeper_SweepsPeriodically(t *testing.T) {
	expirer := &mockExpirer{}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: 20 * time.Millisecond}, expirer, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return expirer.calls.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestExpirySweeper_StartTwice(t *testing.T) {
	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: time.Hour}, &mockExpirer{}, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	defer sweeper.Stop()

	err := sweeper.Start(context.Background())
	assert.Error(t, err)
}

func TestExpirySweeper_StopWaitsForLoop(t *testing.T) {
	expirer := &mockExpirer{}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: 10 * time.Millisecond}, expirer, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	require.NoError(t, sweeper.Stop())

	// No sweeps land after Stop returns.
	settled := expirer.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, expirer.calls.Load())

	// Stopping an already stopped sweeper is a no-op.
	assert.NoError(t, sweeper.Stop())
}

func TestExpirySweeper_SweepErrorKeepsRunning(t *testing.T) {
	expirer := &mockExpirer{
		expireFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("database locked")
		},
	}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: 10 * time.Millisecond}, expirer, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return expirer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestExpirySweeper_DefaultsInterval(t *testing.T) {
	sweeper := NewExpirySweeper(ExpirySweeperConfig{}, &mockExpirer{}, zap.NewNop())
	assert.Equal(t, time.Minute, sweeper.config.SweepInterval)
	assert.Equal(t, "approval-expiry-sweeper", sweeper.Name())
}

type stubWorker struct {
	name     string
	startErr error
	stopped  atomic.Int64
}

func (w *stubWorker) Start(ctx context.Context) error { return w.startErr }
func (w *stubWorker) Stop() error                     { w.stopped.Add(1); return nil }
func (w *stubWorker) Name() string                    { return w.name }

func TestWorkerManager_StartFailureStopsStartedWorkers(t *testing.T) {
	manager := NewWorkerManager(zap.NewNop())
	healthy := &stubWorker{name: "healthy"}
	manager.Register(healthy)
	manager.Register(&stubWorker{name: "broken", startErr: errors.New("port in use")})

	assert.Error(t, manager.StartAll(context.Background()))
	assert.False(t, manager.IsRunning())
	assert.Equal(t, int64(1), healthy.stopped.Load())
}

func TestWorkerManager(t *testing.T) {
	manager := NewWorkerManager(zap.NewNop())
	assert.Equal(t, 0, manager.GetWorkerCount())
	assert.False(t, manager.IsRunning())

	sweeper := NewExpirySweeper(ExpirySweeperConfig{SweepInterval: time.Hour}, &mockExpirer{}, zap.NewNop())
	manager.Register(sweeper)
	assert.Equal(t, 1, manager.GetWorkerCount())

	require.NoError(t, manager.StartAll(context.Background()))
	assert.True(t, manager.IsRunning())
	assert.Error(t, manager.StartAll(context.Background()))

	require.NoError(t, manager.StopAll())
	assert.False(t, manager.IsRunning())
}
