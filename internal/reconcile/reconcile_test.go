package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"watchpay-back/internal/repository"
)

type fakePingRepo struct {
	mu      sync.Mutex
	cutoffs []int64
	removed int64
	err     error
}

func (f *fakePingRepo) DeleteOrphans(_ context.Context, _ repository.RepoExtension, cutoff int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cutoffs = append(f.cutoffs, cutoff)

	return f.removed, f.err
}

func (f *fakePingRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.cutoffs)
}

func TestSweeperPassesGraceAsSeconds(t *testing.T) {
	repo := &fakePingRepo{removed: 2}
	s := NewSweeper(zap.NewNop(), Config{Interval: time.Hour, Grace: 90 * time.Second}, repo)

	s.sweep(context.Background())

	if got := repo.calls(); got != 1 {
		t.Fatalf("expected 1 sweep, got %d", got)
	}

	if repo.cutoffs[0] != 90 {
		t.Fatalf("expected cutoff 90, got %d", repo.cutoffs[0])
	}
}

func TestSweeperKeepsRunningAfterError(t *testing.T) {
	repo := &fakePingRepo{err: errors.New("db down")}
	s := NewSweeper(zap.NewNop(), Config{Interval: time.Hour, Grace: time.Minute}, repo)

	s.sweep(context.Background())
	s.sweep(context.Background())

	if got := repo.calls(); got != 2 {
		t.Fatalf("expected 2 sweeps, got %d", got)
	}
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
	repo := &fakePingRepo{}
	s := NewSweeper(zap.NewNop(), Config{Interval: 5 * time.Millisecond, Grace: time.Minute}, repo)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	if repo.calls() == 0 {
		t.Fatal("expected at least one sweep before cancel")
	}
}

func TestNewSweeperAppliesDefaults(t *testing.T) {
	s := NewSweeper(zap.NewNop(), Config{}, &fakePingRepo{})

	if s.cfg.Interval != 5*time.Minute {
		t.Fatalf("unexpected default interval: %s", s.cfg.Interval)
	}

	if s.cfg.Grace != time.Minute {
		t.Fatalf("unexpected default grace: %s", s.cfg.Grace)
	}
}
