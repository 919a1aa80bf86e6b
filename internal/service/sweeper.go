package service

import (
	"context"
	"sync"
	"time"

	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/metrics"
)

// ExpirySweeper periodically removes committed items whose effective
// expiry has passed. Deletion is unconditional and irreversible; a
// failed pass is logged and retried on the next tick.
type ExpirySweeper struct {
	storage SweeperStorage

	mu        sync.Mutex
	lastStats SweepStats
}

// SweepStats tracks metrics from the last sweep pass.
type SweepStats struct {
	RunAt       time.Time `json:"run_at"`
	RowsDeleted int64     `json:"rows_deleted"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// SweeperStorage defines the store operation needed for expiry sweeping.
type SweeperStorage interface {
	// DeleteExpired removes, in one pass, every committed row whose
	// auto-delete is on and whose absolute expiry has passed, or whose
	// expiry is unset but committedAt + TTL has lapsed. Returns the
	// number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

func NewExpirySweeper(storage SweeperStorage) *ExpirySweeper {
	return &ExpirySweeper{storage: storage}
}

// StartBackground starts a goroutine running a sweep on every tick
// until ctx is cancelled.
func (s *ExpirySweeper) StartBackground(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started expiry sweeper", "component", "sweeper", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunSweep(ctx); err != nil {
					logger.Log.Error("expiry sweep failed",
						"component", "sweeper",
						"error", err)
				} else {
					stats := s.LastStats()
					logger.Log.Info("expiry sweep completed",
						"component", "sweeper",
						"rows_deleted", stats.RowsDeleted,
						"duration_ms", stats.DurationMs)
				}
			case <-ctx.Done():
				logger.Log.Info("expiry sweeper shutting down gracefully", "component", "sweeper")
				return
			}
		}
	}()
}

// RunSweep executes a single sweep pass. It can be called manually for
// testing or maintenance.
func (s *ExpirySweeper) RunSweep(ctx context.Context) error {
	start := time.Now()
	stats := SweepStats{RunAt: start.UTC()}

	deleted, err := s.storage.DeleteExpired(ctx, start.UTC())
	stats.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		stats.Error = err.Error()
		s.setLastStats(stats)
		return err
	}

	stats.RowsDeleted = deleted
	s.setLastStats(stats)

	metrics.SweptItems.Add(float64(deleted))
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	return nil
}

// LastStats returns statistics from the last sweep pass.
func (s *ExpirySweeper) LastStats() SweepStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStats
}

func (s *ExpirySweeper) setLastStats(stats SweepStats) {
	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
}
