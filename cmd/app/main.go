package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mintwatch/internal/api"
	"mintwatch/internal/chain"
	"mintwatch/internal/classifier"
	"mintwatch/internal/config"
	"mintwatch/internal/log"
	"mintwatch/internal/notifier"
	"mintwatch/internal/queue"
	"mintwatch/internal/redis"
	"mintwatch/internal/storage"
	"mintwatch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		base := log.Base()
		base.Fatal().Err(err).Msg("failed to load config")
	}
	log.Configure(log.Config{Level: cfg.Log.Level})
	logger := log.WithComponent("app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.NewPostgres(cfg.Storage.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to storage")
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate storage")
	}

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
		logger.Fatal().Err(err).Msg("failed to create publisher")
	}
	defer publisher.Close()

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create consumer")
	}
	defer consumer.Close()

	display := classifier.Display{
		CollectionName:        cfg.Display.CollectionName,
		CollectionDescription: cfg.Display.CollectionDescription,
	}

	server := api.NewServer(repo, rdb, display)

	indexer := chain.NewIndexer(cfg.Chain.Endpoint, cfg.Chain.Timeout)
	poller := worker.NewPoller(indexer, rdb, publisher, cfg.Poller.Interval, cfg.Poller.Tick)
	w := worker.NewConsumer(consumer, repo, rdb, newNotifier(cfg.Notifier), server, display)

	go poller.Start(ctx)

	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("consumer error")
		}
	}()

	go func() {
		logger.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	}()

	logger.Info().Int("launches", len(cfg.Launches)).Msg("app started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()
	server.Shutdown()
}

func newNotifier(cfg config.NotifierConfig) notifier.Notifier {
	if cfg.TelegramToken == "" {
		return notifier.Nop{}
	}
	return notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatIDs)
}
