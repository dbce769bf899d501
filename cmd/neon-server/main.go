// Package main is the entry point for the Neon Domination game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/engine"
	"github.com/abhasgawali/neon-domination/internal/infra/storage"
	"github.com/abhasgawali/neon-domination/internal/network"
	"github.com/abhasgawali/neon-domination/internal/platform/config"
	"github.com/abhasgawali/neon-domination/internal/platform/logger"
	"github.com/abhasgawali/neon-domination/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[NEON-SERVER] invalid configuration: %v", err)
	}

	appLogger := logger.NewLogger(cfg.LogLevel)
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
		appLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive, closeArchive, err := openArchive(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeArchive()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger)
	go hub.Run(ctx)

	appLogger.Info("Bootstrapping Engine...",
		zap.Duration("tick", cfg.TickInterval),
		zap.Duration("match", cfg.GameDuration),
		zap.Int("seats", cfg.MaxPlayersPerRoom),
	)
	gameEngine := engine.NewEngine(cfg, hub, appLogger, engine.WithArchive(archive))
	gameEngine.Start(ctx)

	router := mux.NewRouter()
	router.HandleFunc("/ws", network.ServeWS(hub, gameEngine, cfg))
	network.NewLobbyAPI(gameEngine).RegisterRoutes(router)
	network.NewHistoryHandler(gameEngine.Archive(), appLogger).RegisterRoutes(router)
	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP API & WS server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("http shutdown incomplete", zap.Error(err))
	}

	// Let in-flight match archives land before the database closes.
	gameEngine.Wait()
	appLogger.Info("Server stopped")
	return nil
}

// openArchive picks the match archive: Redis when an address is configured,
// then SQLite when a path is configured, process memory otherwise.
func openArchive(cfg *config.Config, appLogger *logger.Logger) (storage.MatchRepository, func(), error) {
	if cfg.RedisAddr != "" {
		appLogger.Info("Connecting to Redis match archive", zap.String("addr", cfg.RedisAddr))
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		repo := storage.NewRedisMatchRepository(rdb, "neon")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach Redis at %s: %w", cfg.RedisAddr, err)
		}
		closeRedis := func() {
			if err := rdb.Close(); err != nil {
				appLogger.Warn("failed to close Redis client", zap.Error(err))
			}
		}
		return repo, closeRedis, nil
	}

	if cfg.DBPath == "" {
		appLogger.Warn("NEON_DB_PATH is empty, match history will not survive restarts")
		return storage.NewMemoryMatchRepository(), func() {}, nil
	}

	appLogger.Info("Initializing SQLite match archive", zap.String("path", cfg.DBPath))
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			appLogger.Warn("failed to close SQLite", zap.Error(err))
		}
	}
	return storage.NewSQLiteMatchRepository(db), closeDB, nil
}
