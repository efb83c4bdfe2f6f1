package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mintwatch/internal/domain"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Indexer fetches decoded accounts from an HTTP indexer sitting in front of
// the chain RPC. A 404 means the account does not exist yet.
type Indexer struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

func NewIndexer(endpoint string, timeout time.Duration) *Indexer {
	return &Indexer{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}
}

func (ix *Indexer) Snapshot(ctx context.Context, launch domain.Launch) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Launch: launch.Name}

	if launch.FairLaunchID != "" {
		var acc FairLaunchAccount
		found, err := ix.fetch(ctx, "fair-launch", launch.FairLaunchID, &acc)
		if err != nil {
			return nil, fmt.Errorf("fair launch %s: %w", launch.FairLaunchID, err)
		}
		if found {
			if snap.FairLaunch, err = acc.State(); err != nil {
				return nil, fmt.Errorf("fair launch %s: %w", launch.FairLaunchID, err)
			}
		}
	}

	if launch.CandyMachineID != "" {
		var acc CandyMachineAccount
		found, err := ix.fetch(ctx, "candy-machine", launch.CandyMachineID, &acc)
		if err != nil {
			return nil, fmt.Errorf("candy machine %s: %w", launch.CandyMachineID, err)
		}
		if found {
			snap.CandyMachine = acc.State()
		}
	}

	snap.FetchedAt = ix.now()
	return snap, nil
}

func (ix *Indexer) fetch(ctx context.Context, kind, id string, out any) (bool, error) {
	u := fmt.Sprintf("%s/%s/%s", ix.endpoint, kind, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ix.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode: %w", err)
	}
	return true, nil
}
