package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cardsmith/engine-go/internal/auth"
	"github.com/cardsmith/engine-go/internal/config"
	"github.com/cardsmith/engine-go/internal/game"
	"github.com/cardsmith/engine-go/internal/repository"
	"github.com/cardsmith/engine-go/internal/server"
	"github.com/cardsmith/engine-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting cardsmith engine server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	stats := db.Stats()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)

	sessionMgr := session.NewManager(cfg.Server.LeasePeriod, logger)
	go sessionMgr.CleanupExpiredSessions(ctx)
	logger.Info("session manager initialized",
		zap.Duration("lease_period", cfg.Server.LeasePeriod),
	)

	verifier, err := auth.NewVerifier(cfg.Auth.APIKeyHashes)
	if err != nil {
		logger.Fatal("invalid api key configuration", zap.Error(err))
	}
	if !verifier.Enabled() {
		logger.Warn("no api keys configured; gateway authentication disabled")
	}

	engine := game.NewEngine(logger, game.Options{
		MaxQueueSize: cfg.Engine.MaxQueueSize,
		LogEvents:    cfg.Engine.LogEvents,
	})
	logger.Info("game engine initialized",
		zap.Int("max_queue_size", cfg.Engine.MaxQueueSize),
	)

	projects := repository.NewProjectRepository(db)
	gateway := server.NewGateway(engine, sessionMgr, verifier, projects, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gateway.HandleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("gateway failed", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway shutdown failed", zap.Error(err))
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	var zapCfg zap.Config
	if cfg.Encoding == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Encoding = cfg.Encoding
	return zapCfg.Build()
}
