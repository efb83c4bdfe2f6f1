package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mintwatch/internal/chain"
	"mintwatch/internal/classifier"
	"mintwatch/internal/countdown"
	"mintwatch/internal/domain"
	"mintwatch/internal/log"
)

// Watches a single launch straight from the indexer and logs its phase and
// countdown, without Kafka, Redis or Postgres.
func main() {
	launch := domain.Launch{
		Name:           getEnv("LAUNCH_NAME", "launch"),
		FairLaunchID:   os.Getenv("FAIR_LAUNCH_ID"),
		CandyMachineID: os.Getenv("CANDY_MACHINE_ID"),
	}
	endpoint := getEnv("INDEXER_URL", "http://localhost:8899")
	interval := getDuration("POLL_INTERVAL", 30*time.Second)
	display := classifier.Display{
		CollectionName:        getEnv("COLLECTION_NAME", "Phase 4"),
		CollectionDescription: getEnv("COLLECTION_DESCRIPTION", "Minting is live"),
	}

	logger := log.WithComponent("watch")
	logger.Info().
		Str("endpoint", endpoint).
		Str("fair_launch", launch.FairLaunchID).
		Str("candy_machine", launch.CandyMachineID).
		Msg("mintwatch starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	indexer := chain.NewIndexer(endpoint, 15*time.Second)

	var snap *domain.Snapshot
	refresh := func() {
		s, err := indexer.Snapshot(ctx, launch)
		if err != nil {
			logger.Error().Err(err).Msg("fetch snapshot")
			return
		}
		snap = s
	}
	refresh()

	poll := time.NewTicker(interval)
	defer poll.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	last := domain.PhaseUnknown
	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			refresh()
		case <-tick.C:
			if snap == nil {
				continue
			}
			now := time.Now()
			p := classifier.ClassifySnapshot(snap, now)
			h, ok := classifier.HeaderFor(p, snap.FairLaunch, snap.CandyMachine, display)
			if !ok {
				continue
			}
			ev := logger.Debug()
			if p != last {
				ev = logger.Info()
				last = p
			}
			ev.Stringer("phase", p).
				Str("header", h.Name).
				Str("countdown", countdown.Compute(h.Date, h.Status, now).String()).
				Msg(h.Description)
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
