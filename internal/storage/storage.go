package storage

import (
	"context"

	"mintwatch/internal/domain"
)

type TransitionRepository interface {
	Save(ctx context.Context, t domain.Transition) error
	FindByID(ctx context.Context, id string) (*domain.Transition, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Transition, error)
	FindByLaunch(ctx context.Context, launch string, limit int) ([]domain.Transition, error)
}
