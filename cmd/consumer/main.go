package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

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
	log.Configure(log.Config{Level: cfg.Log.Level, Service: "mintwatch-consumer"})
	logger := log.WithComponent("main")

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

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create consumer")
	}
	defer consumer.Close()

	var nt notifier.Notifier = notifier.Nop{}
	if cfg.Notifier.TelegramToken != "" {
		nt = notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
	}

	display := classifier.Display{
		CollectionName:        cfg.Display.CollectionName,
		CollectionDescription: cfg.Display.CollectionDescription,
	}

	w := worker.NewConsumer(consumer, repo, rdb, nt, nil, display)

	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("consumer error")
		}
	}()

	logger.Info().Msg("consumer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()
}
