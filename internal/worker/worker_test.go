package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"mintwatch/internal/domain"
	"mintwatch/internal/redis"
)

var base = time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func newStore(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

type fakeSource struct {
	snaps map[string]*domain.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Snapshot(_ context.Context, launch domain.Launch) (*domain.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.snaps[launch.Name]
	if !ok {
		return &domain.Snapshot{Launch: launch.Name}, nil
	}
	return snap, nil
}

type fakePublisher struct {
	mu          sync.Mutex
	transitions []domain.Transition
	err         error
}

func (f *fakePublisher) Publish(_ context.Context, t domain.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.transitions = append(f.transitions, t)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) published() []domain.Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Transition(nil), f.transitions...)
}

var errBoom = errors.New("boom")
