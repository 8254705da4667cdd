package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ercanvas/locamoo/internal/api"
	"github.com/ercanvas/locamoo/internal/factory"
	redisstorage "github.com/ercanvas/locamoo/internal/storage/redis"
)

type envConfig struct {
	Host          string        `envconfig:"HOST" default:""`
	Port          int           `envconfig:"PORT" default:"8080"`
	LogLevel      slog.Level    `envconfig:"LOG_LEVEL" default:"INFO"`
	StorageType   string        `envconfig:"STORAGE_TYPE" default:"memory"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	ChatWindow    time.Duration `envconfig:"CHAT_WINDOW" default:"20m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	FilterRefresh time.Duration `envconfig:"FILTER_REFRESH" default:"1m"`
}

func main() {
	var env envConfig
	if err := envconfig.Process("locamoo", &env); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.LogLevel,
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:        logger,
		StorageType:   env.StorageType,
		ChatWindow:    env.ChatWindow,
		SweepInterval: env.SweepInterval,
		FilterRefresh: env.FilterRefresh,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if env.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the block-list before accepting traffic; the periodic refresh
	// keeps it current afterwards.
	if err := app.Filter.Refresh(ctx); err != nil {
		logger.Warn("could not load hidden words", slog.String("error", err.Error()))
	}

	go app.Hub.Run(ctx)
	go app.Filter.Run(ctx)
	go app.Sweeper.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Store:      app.Store,
		Clock:      app.Clock,
		Hub:        app.Hub,
		Filter:     app.Filter,
		ChatWindow: app.ChatWindow,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = env.Host
	serverConfig.Port = env.Port
	server := api.NewServer(router, serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
