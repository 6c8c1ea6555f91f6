package snapshot

import (
	"context"
	"time"

	"github.com/KevinAcruz/acru/internal/logger"
)

// ActiveCounter reports the current pruned presence count.
type ActiveCounter interface {
	ActiveNow(ctx context.Context) (int64, error)
}

// Archiver periodically records the live presence count. Failures are
// logged and skipped; the next tick tries again.
type Archiver struct {
	repo     *Repo
	counter  ActiveCounter
	interval time.Duration
}

func NewArchiver(repo *Repo, counter ActiveCounter, interval time.Duration) *Archiver {
	return &Archiver{
		repo:     repo,
		counter:  counter,
		interval: interval,
	}
}

func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.capture(ctx, now)
		}
	}
}

func (a *Archiver) capture(ctx context.Context, now time.Time) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	active, err := a.counter.ActiveNow(opCtx)
	if err != nil {
		logger.Error("snapshot capture failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if err := a.repo.Record(opCtx, active, now.UTC()); err != nil {
		logger.Error("snapshot record failed", map[string]any{
			"error": err.Error(),
		})
	}
}
