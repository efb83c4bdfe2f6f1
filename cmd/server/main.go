package main

import (
	"os"
	"os/signal"
	"syscall"

	"mintwatch/internal/api"
	"mintwatch/internal/classifier"
	"mintwatch/internal/config"
	"mintwatch/internal/log"
	"mintwatch/internal/redis"
	"mintwatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		base := log.Base()
		base.Fatal().Err(err).Msg("failed to load config")
	}
	log.Configure(log.Config{Level: cfg.Log.Level, Service: "mintwatch-server"})
	logger := log.WithComponent("main")

	repo, err := storage.NewPostgres(cfg.Storage.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to storage")
	}
	defer repo.Close()

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	server := api.NewServer(repo, rdb, classifier.Display{
		CollectionName:        cfg.Display.CollectionName,
		CollectionDescription: cfg.Display.CollectionDescription,
	})

	go func() {
		logger.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	server.Shutdown()
}
