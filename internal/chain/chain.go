package chain

import (
	"context"

	"mintwatch/internal/domain"
)

// Source reads the current account state of a launch.
type Source interface {
	Snapshot(ctx context.Context, launch domain.Launch) (*domain.Snapshot, error)
}
