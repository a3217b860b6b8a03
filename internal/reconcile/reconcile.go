package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watchpay-back/internal/repository"
)

type PingRepository interface {
	DeleteOrphans(ctx context.Context, ext repository.RepoExtension, cutoff int64) (int64, error)
}

type Config struct {
	Interval time.Duration
	Grace    time.Duration
}

// Sweeper periodically deletes ping rows that have no correlated
// transaction record. Such rows cannot appear through the recording
// transaction; they indicate a partially applied write after a crash
// or a manual intervention, and must not linger in uptime history.
type Sweeper struct {
	l    *zap.Logger
	cfg  Config
	repo PingRepository
}

func NewSweeper(l *zap.Logger, cfg Config, repo PingRepository) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	if cfg.Grace <= 0 {
		cfg.Grace = time.Minute
	}

	return &Sweeper{
		l:    l,
		cfg:  cfg,
		repo: repo,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Reconcile sweeper stopped")

			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.repo.DeleteOrphans(ctx, nil, int64(s.cfg.Grace.Seconds()))
	if err != nil {
		s.l.Error("Failed to sweep orphan pings", zap.Error(err))

		return
	}

	if removed > 0 {
		s.l.Warn("Removed orphan pings", zap.Int64("count", removed))
	}
}
