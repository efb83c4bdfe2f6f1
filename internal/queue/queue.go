package queue

import (
	"context"

	"mintwatch/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, t domain.Transition) error
	Close() error
}

type Handler func(ctx context.Context, t domain.Transition) error

type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}
