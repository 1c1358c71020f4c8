package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sweeper periodically deletes artifacts whose modification time is older
// than the retention threshold. It may race with an in-flight request that
// outlives the threshold; that request's files are deleted anyway.
type Sweeper struct {
	dirs      []string
	retention time.Duration
	interval  time.Duration
	onRemove  func(path string)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper over dirs. onRemove, if non-nil, is called for
// every deleted file.
func NewSweeper(dirs []string, retention, interval time.Duration, onRemove func(path string)) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		dirs:      dirs,
		retention: retention,
		interval:  interval,
		onRemove:  onRemove,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("artifact sweeper started", "interval", s.interval, "retention", s.retention)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.SweepOnce(now); n > 0 {
					slog.Info("artifact sweep complete", "removed", n)
				}
			}
		}
	}(s.done)
}

// Stop halts the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("artifact sweeper stopped")
}

// SweepOnce deletes every regular file older than now-retention and returns
// how many were removed. Files that vanish concurrently are ignored.
func (s *Sweeper) SweepOnce(now time.Time) int {
	cutoff := now.Add(-s.retention)
	removed := 0

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.Warn("sweep: reading directory", "dir", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				// Removed between ReadDir and Info.
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			if err := removeIfExists(path); err != nil {
				slog.Warn("sweep: removing artifact", "path", path, "error", err)
				continue
			}
			removed++
			slog.Debug("swept artifact", "path", path)
			if s.onRemove != nil {
				s.onRemove(path)
			}
		}
	}
	return removed
}
