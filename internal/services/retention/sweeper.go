package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/storage"
)

const (
	// DefaultWindow is how long global chat messages are retained
	DefaultWindow = 20 * time.Minute

	// DefaultInterval is how often the sweeper prunes expired messages
	DefaultInterval = 60 * time.Second
)

// Sweeper prunes persisted global chat older than the retention window.
// A failed sweep is logged and retried on the next tick; it never stops
// the process.
type Sweeper struct {
	store    storage.Store
	clock    clock.Clock
	logger   *slog.Logger
	window   time.Duration
	interval time.Duration
}

// NewSweeper creates a retention sweeper. Zero window/interval fall back
// to the defaults.
func NewSweeper(store storage.Store, clk clock.Clock, logger *slog.Logger, window, interval time.Duration) *Sweeper {
	if window <= 0 {
		window = DefaultWindow
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    store,
		clock:    clk,
		logger:   logger.With(slog.String("component", "retention")),
		window:   window,
		interval: interval,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes messages older than the retention window
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.window)
	pruned, err := s.store.PruneGlobalChatBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("chat prune failed", slog.Any("error", err))
		return
	}
	if pruned > 0 {
		s.logger.Info("chat history pruned",
			slog.Int("removed", pruned),
			slog.Time("cutoff", cutoff))
	}
}
