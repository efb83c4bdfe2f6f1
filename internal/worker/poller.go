package worker

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"mintwatch/internal/chain"
	"mintwatch/internal/classifier"
	"mintwatch/internal/domain"
	"mintwatch/internal/log"
	"mintwatch/internal/metrics"
	"mintwatch/internal/queue"
)

// LaunchStore is the shared state the poller reads launches from and
// writes snapshots and phases to.
type LaunchStore interface {
	GetLaunches(ctx context.Context) ([]domain.Launch, error)
	LaunchExists(ctx context.Context, name string) (bool, error)
	SetSnapshot(ctx context.Context, snap *domain.Snapshot) error
	SetPhase(ctx context.Context, launch string, p domain.Phase) error
	GetPhase(ctx context.Context, launch string) (domain.Phase, bool, error)
}

// Poller refreshes snapshots every interval and reclassifies the cached
// snapshots every tick, publishing a transition whenever a launch's phase
// changes. Phases move with the clock even when the accounts do not, so the
// tick is what catches most transitions.
type Poller struct {
	source    chain.Source
	store     LaunchStore
	publisher queue.Publisher
	interval  time.Duration
	tick      time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	snapshots map[string]*domain.Snapshot
	last      map[string]domain.Phase
}

func NewPoller(s chain.Source, store LaunchStore, p queue.Publisher, interval, tick time.Duration) *Poller {
	return &Poller{
		source:    s,
		store:     store,
		publisher: p,
		interval:  interval,
		tick:      tick,
		now:       time.Now,
		logger:    log.WithComponent("poller"),
		snapshots: make(map[string]*domain.Snapshot),
		last:      make(map[string]domain.Phase),
	}
}

func (w *Poller) Start(ctx context.Context) {
	poll := time.NewTicker(w.interval)
	defer poll.Stop()
	tick := time.NewTicker(w.tick)
	defer tick.Stop()

	w.pollAll(ctx)
	w.evaluate(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			w.pollAll(ctx)
			w.evaluate(ctx)
		case <-tick.C:
			w.evaluate(ctx)
		}
	}
}

func (w *Poller) pollAll(ctx context.Context) {
	launches, err := w.store.GetLaunches(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("list launches")
		return
	}

	tracked := make(map[string]bool, len(launches))
	for _, launch := range launches {
		tracked[launch.Name] = true

		snap, err := w.source.Snapshot(ctx, launch)
		if err != nil {
			metrics.SnapshotErrorsTotal.WithLabelValues(launch.Name).Inc()
			w.logger.Error().Err(err).Str("launch", launch.Name).Msg("fetch snapshot")
			continue
		}

		if err := w.store.SetSnapshot(ctx, snap); err != nil {
			w.logger.Error().Err(err).Str("launch", launch.Name).Msg("cache snapshot")
		}
		w.snapshots[launch.Name] = snap

		w.logger.Debug().
			Str("launch", launch.Name).
			Bool("fair_launch", snap.FairLaunch != nil).
			Bool("candy_machine", snap.CandyMachine != nil).
			Msg("snapshot refreshed")
	}

	for name := range w.snapshots {
		if !tracked[name] {
			w.forget(name)
		}
	}
}

func (w *Poller) forget(name string) {
	delete(w.snapshots, name)
	delete(w.last, name)
	metrics.ForgetLaunch(name)
	w.logger.Info().Str("launch", name).Msg("launch no longer tracked")
}

// tracked reports whether name is still registered. Launches can be removed
// between polls, and a removed launch must not publish or write its phase back.
func (w *Poller) tracked(ctx context.Context, name string) bool {
	ok, err := w.store.LaunchExists(ctx, name)
	if err != nil {
		w.logger.Warn().Err(err).Str("launch", name).Msg("check launch")
		return false
	}
	if !ok {
		w.forget(name)
	}
	return ok
}

func (w *Poller) evaluate(ctx context.Context) {
	now := w.now()

	names := make([]string, 0, len(w.snapshots))
	for name := range w.snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !w.tracked(ctx, name) {
			continue
		}

		p := classifier.ClassifySnapshot(w.snapshots[name], now)
		metrics.SetPhase(name, p)

		prev, known := w.lastPhase(ctx, name)
		if known && prev == p {
			continue
		}
		if !known && p == domain.PhaseUnknown {
			w.last[name] = p
			continue
		}

		t := domain.Transition{
			ID:     transitionID(name, p, now),
			Launch: name,
			From:   prev,
			To:     p,
			At:     now,
		}
		if err := w.publisher.Publish(ctx, t); err != nil {
			// Left unrecorded so the next tick retries.
			w.logger.Error().Err(err).Str("launch", name).Msg("publish transition")
			continue
		}

		w.last[name] = p
		if err := w.store.SetPhase(ctx, name, p); err != nil {
			w.logger.Error().Err(err).Str("launch", name).Msg("store phase")
		}

		w.logger.Info().
			Str("launch", name).
			Stringer("from", prev).
			Stringer("to", p).
			Msg("phase changed")
	}
}

// lastPhase falls back to the store so a restart does not re-announce the
// current phase. Unknown launches report PhaseUnknown.
func (w *Poller) lastPhase(ctx context.Context, name string) (domain.Phase, bool) {
	if p, ok := w.last[name]; ok {
		return p, true
	}

	p, ok, err := w.store.GetPhase(ctx, name)
	if err != nil {
		w.logger.Warn().Err(err).Str("launch", name).Msg("load phase")
		return domain.PhaseUnknown, false
	}
	if ok {
		w.last[name] = p
	}
	return p, ok
}

func transitionID(launch string, to domain.Phase, at time.Time) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%s|%d", launch, to, at.UnixNano())))
	return fmt.Sprintf("%x", hash)[:16]
}
