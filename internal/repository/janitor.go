package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Janitor purges expired artifacts on a fixed interval until shut down.
type Janitor struct {
	repo      ArtifactRepository
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewJanitor(repo ArtifactRepository, retention, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{repo: repo, retention: retention, interval: interval, logger: logger, stop: make(chan struct{})}
}

// Start launches the purge loop. Calling it twice has no effect.
func (j *Janitor) Start() {
	j.once.Do(func() {
		j.wg.Add(1)
		go func() {
			defer j.wg.Done()
			t := time.NewTicker(j.interval)
			defer t.Stop()
			j.logger.Info("repository.janitor.started", "interval", j.interval.String())
			for {
				select {
				case <-j.stop:
					j.logger.Info("repository.janitor.stopped")
					return
				case now := <-t.C:
					j.RunOnce(context.Background(), now)
				}
			}
		}()
	})
}

// RunOnce purges everything older than the retention window as of now.
func (j *Janitor) RunOnce(ctx context.Context, now time.Time) int {
	n, err := j.repo.Purge(ctx, now.Add(-j.retention))
	if err != nil {
		j.logger.Error("repository.janitor.purge_failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Info("repository.janitor.purged", "artifacts", n)
	}
	return n
}

// Shutdown stops the loop and waits for it, or for ctx to end.
func (j *Janitor) Shutdown(ctx context.Context) {
	select {
	case <-j.stop:
		return
	default:
		close(j.stop)
	}
	done := make(chan struct{})
	go func() { defer close(done); j.wg.Wait() }()
	select {
	case <-ctx.Done():
		j.logger.Warn("repository.janitor.shutdown_interrupted")
	case <-done:
	}
}
