package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keywordagent/internal/agent"
	"keywordagent/internal/config"
	"keywordagent/internal/llm"
	"keywordagent/internal/logger"
	"keywordagent/internal/server"
	"keywordagent/internal/storage"
	"keywordagent/internal/trends"
)

func main() {
	cfg, env, err := config.Load("config.yaml")
	if err != nil {
		logger.Error().Err(err).Msg("Loading configuration failed")
		os.Exit(1)
	}

	if err := logger.Init(*cfg); err != nil {
		logger.Error().Err(err).Msg("Initializing logger failed")
		os.Exit(1)
	}

	ctx := context.Background()

	trendsClient := trends.NewClient(cfg.Trends.Lang)
	trendsService, err := trends.NewService(trendsClient, trends.Config{
		Geo:        cfg.Trends.Geo,
		Timeframe:  cfg.Trends.Timeframe,
		BatchSize:  cfg.Trends.BatchSize,
		MaxRelated: cfg.Trends.MaxRelated,
		Denylist:   cfg.Trends.Denylist,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Initializing trends service failed")
		os.Exit(1)
	}

	trendsTool, err := agent.NewTrendsTool(trendsService)
	if err != nil {
		logger.Error().Err(err).Msg("Initializing trends tool failed")
		os.Exit(1)
	}

	chatModel, err := llm.NewChatModel(ctx, *cfg, env.LLMAPIKey)
	if err != nil {
		logger.Error().Err(err).Msg("Initializing chat model failed")
		os.Exit(1)
	}

	pipeline, err := agent.NewPipeline(ctx, chatModel, trendsTool, *cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Building pipeline failed")
		os.Exit(1)
	}

	var store storage.RunStore
	if env.RedisURL != "" {
		redisStore, err := storage.NewRedisStore(ctx, env.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("Connecting to Redis failed")
			os.Exit(1)
		}
		store = redisStore
		logger.Info().Msg("Using Redis run store")
	} else {
		store = storage.NewMemoryStore()
		logger.Info().Msg("Using in-memory run store")
	}
	defer store.Close()

	srv := server.New(pipeline, store, *cfg)
	pipeline.SetObserver(srv.Metrics().ObserveStage)
	trendsService.SetBatchObserver(srv.Metrics().ObserveTrendBatch)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}
}
