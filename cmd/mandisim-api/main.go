package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mandisim/internal/api"
	"mandisim/internal/config"
	"mandisim/internal/db"
	"mandisim/internal/game"
	"mandisim/internal/snapshot"
)

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
	bot := game.NewNegotiationBot(market, logger)
	progression := game.NewProgressionManager(logger)
	contracts := game.NewContractStore(store, logger)
	sandbox := game.NewSession(market, bot, progression, contracts, logger)

	if cfg.AutoUpdate {
		market.StartAutoUpdate()
		defer market.StopAutoUpdate()
	}

	server := api.New(cfg, logger, sandbox)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("mandisim api listening", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
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
