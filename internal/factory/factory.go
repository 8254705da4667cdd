package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/hub"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/services/retention"
	"github.com/ercanvas/locamoo/internal/storage"
	"github.com/ercanvas/locamoo/internal/storage/memory"
	redisstorage "github.com/ercanvas/locamoo/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Store storage.Store
	Clock clock.Clock

	Filter  *moderation.Filter
	Hub     *hub.Hub
	Sweeper *retention.Sweeper

	// ChatWindow is the retention window applied to global chat, exposed so
	// the REST layer serves the same window the sweeper enforces.
	ChatWindow time.Duration
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ChatWindow overrides the global chat retention window (optional)
	ChatWindow time.Duration
	// SweepInterval overrides how often expired chat is pruned (optional)
	SweepInterval time.Duration
	// FilterRefresh overrides how often the censor reloads the block-list (optional)
	FilterRefresh time.Duration
	// HubConfig overrides hub tuning (optional, zero value means defaults)
	HubConfig hub.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	window := cfg.ChatWindow
	if window == 0 {
		window = retention.DefaultWindow
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval == 0 {
		sweepInterval = retention.DefaultInterval
	}
	filterRefresh := cfg.FilterRefresh
	if filterRefresh == 0 {
		filterRefresh = moderation.DefaultRefreshInterval
	}
	hubCfg := cfg.HubConfig
	if hubCfg.StoreTimeout == 0 {
		hubCfg = hub.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), logger, window, sweepInterval, filterRefresh, hubCfg), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Store,
	clk clock.Clock,
	logger *slog.Logger,
	window, sweepInterval, filterRefresh time.Duration,
	hubCfg hub.Config,
) *App {
	filter := moderation.NewFilter(store, logger, filterRefresh)
	sweeper := retention.NewSweeper(store, clk, logger, window, sweepInterval)
	h := hub.New(store, filter, clk, logger, hubCfg)

	return &App{
		Store:      store,
		Clock:      clk,
		Filter:     filter,
		Hub:        h,
		Sweeper:    sweeper,
		ChatWindow: window,
	}
}
