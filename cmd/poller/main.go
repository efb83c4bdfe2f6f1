package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mintwatch/internal/chain"
	"mintwatch/internal/config"
	"mintwatch/internal/log"
	"mintwatch/internal/queue"
	"mintwatch/internal/redis"
	"mintwatch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		base := log.Base()
		base.Fatal().Err(err).Msg("failed to load config")
	}
	log.Configure(log.Config{Level: cfg.Log.Level, Service: "mintwatch-poller"})
	logger := log.WithComponent("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	for _, launch := range cfg.DomainLaunches() {
		if err := rdb.AddLaunch(ctx, launch); err != nil {
			logger.Fatal().Err(err).Str("launch", launch.Name).Msg("failed to seed launch")
		}
	}

	publisher, err := queue.NewKafka(cfg.Queue.Brokers, cfg.Queue.Topic)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create queue")
	}
	defer publisher.Close()

	indexer := chain.NewIndexer(cfg.Chain.Endpoint, cfg.Chain.Timeout)
	w := worker.NewPoller(indexer, rdb, publisher, cfg.Poller.Interval, cfg.Poller.Tick)

	go w.Start(ctx)

	logger.Info().Dur("interval", cfg.Poller.Interval).Dur("tick", cfg.Poller.Tick).Msg("poller started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()
}
