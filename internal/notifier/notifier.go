package notifier

import (
	"context"

	"mintwatch/internal/classifier"
	"mintwatch/internal/domain"
)

type Notification struct {
	Transition domain.Transition
	Header     classifier.Header
	HasHeader  bool
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Nop discards notifications; used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
