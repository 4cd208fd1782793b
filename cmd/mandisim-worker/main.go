package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mandisim/internal/config"
	"mandisim/internal/db"
	"mandisim/internal/game"
	"mandisim/internal/snapshot"
)

// The worker owns the market tick for deployments where the API process does
// not run the auto-updater. It shares the snapshot store, so every process
// reads the same world.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("snapshot store init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	market := game.NewMarketEngineWith(ctx, store, logger, game.MarketOptions{
		Seed:    cfg.Seed,
		TickMin: cfg.TickMin,
		TickMax: cfg.TickMax,
	})

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("MANDISIM_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := market.UpdatePrices(ctx); err != nil {
			logger.Error("tick failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	market.StartAutoUpdate()
	logger.Info("worker started", "tick_min", cfg.TickMin.String(), "tick_max", cfg.TickMax.String())

	<-ctx.Done()
	market.StopAutoUpdate()
	logger.Info("worker shutdown")
}

func openStore(ctx context.Context, cfg config.APIConfig) (snapshot.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.BackendMemory:
		return snapshot.NewMemory(), func() {}, nil
	default:
		store, err := snapshot.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
