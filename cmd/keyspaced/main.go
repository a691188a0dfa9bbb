package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/logger"
	"github.com/eternalApril/keyspace/internal/server"
	"github.com/eternalApril/keyspace/internal/storage"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.FromConfig(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("keyspaced starting",
		zap.String("port", cfg.Server.Port),
		zap.Uint("shards", cfg.Storage.Shards),
		zap.Int("databases", cfg.Storage.Databases),
	)

	dbs, err := storage.NewDatabases(cfg.Storage.Databases, cfg.Storage.Shards)
	if err != nil {
		log.Error("cant initialize storage", zap.Error(err))
		return
	}

	engine, err := server.NewEngine(dbs, cfg, log)
	if err != nil {
		log.Error("cant initialize engine", zap.Error(err))
		return
	}

	listener, err := net.Listen("tcp", cfg.Server.Address())
	if err != nil {
		log.Error("listener error", zap.Error(err))
		engine.Shutdown()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(engine, log)
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
	case err := <-served:
		if !errors.Is(err, server.ErrServerClosed) {
			log.Error("serve failed", zap.Error(err))
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown timed out, forcing exit", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	}

	log.Info("keyspaced stopped")
}
