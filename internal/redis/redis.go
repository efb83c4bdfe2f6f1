package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mintwatch/internal/domain"
)

const (
	launchesKey  = "mintwatch:launches"
	snapshotsKey = "mintwatch:snapshots"
	phasesKey    = "mintwatch:phases"
)

type Client struct {
	rdb *redis.Client
}

func New(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Launch tracking
func (c *Client) AddLaunch(ctx context.Context, launch domain.Launch) error {
	data, err := json.Marshal(launch)
	if err != nil {
		return err
	}
	return c.rdb.HSet(ctx, launchesKey, launch.Name, data).Err()
}

// RemoveLaunch stops tracking a launch and drops its cached state.
func (c *Client) RemoveLaunch(ctx context.Context, name string) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, launchesKey, name)
		p.HDel(ctx, snapshotsKey, name)
		p.HDel(ctx, phasesKey, name)
		return nil
	})
	return err
}

func (c *Client) LaunchExists(ctx context.Context, name string) (bool, error) {
	return c.rdb.HExists(ctx, launchesKey, name).Result()
}

func (c *Client) GetLaunch(ctx context.Context, name string) (*domain.Launch, error) {
	data, err := c.rdb.HGet(ctx, launchesKey, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var launch domain.Launch
	if err := json.Unmarshal(data, &launch); err != nil {
		return nil, fmt.Errorf("decode launch %s: %w", name, err)
	}
	return &launch, nil
}

// GetLaunches returns tracked launches in no particular order.
func (c *Client) GetLaunches(ctx context.Context) ([]domain.Launch, error) {
	raw, err := c.rdb.HGetAll(ctx, launchesKey).Result()
	if err != nil {
		return nil, err
	}

	launches := make([]domain.Launch, 0, len(raw))
	for name, data := range raw {
		var launch domain.Launch
		if err := json.Unmarshal([]byte(data), &launch); err != nil {
			return nil, fmt.Errorf("decode launch %s: %w", name, err)
		}
		launches = append(launches, launch)
	}
	return launches, nil
}

// Snapshot cache
func (c *Client) SetSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.HSet(ctx, snapshotsKey, snap.Launch, data).Err()
}

// GetSnapshot returns nil without error when nothing is cached for launch.
func (c *Client) GetSnapshot(ctx context.Context, launch string) (*domain.Snapshot, error) {
	data, err := c.rdb.HGet(ctx, snapshotsKey, launch).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", launch, err)
	}
	return &snap, nil
}

// Last classified phase
func (c *Client) SetPhase(ctx context.Context, launch string, p domain.Phase) error {
	return c.rdb.HSet(ctx, phasesKey, launch, p.String()).Err()
}

// GetPhase reports false when no phase has been recorded for launch.
func (c *Client) GetPhase(ctx context.Context, launch string) (domain.Phase, bool, error) {
	name, err := c.rdb.HGet(ctx, phasesKey, launch).Result()
	if errors.Is(err, redis.Nil) {
		return domain.PhaseUnknown, false, nil
	}
	if err != nil {
		return domain.PhaseUnknown, false, err
	}

	p, err := domain.ParsePhase(name)
	if err != nil {
		return domain.PhaseUnknown, false, err
	}
	return p, true, nil
}
