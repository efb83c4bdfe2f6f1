package worker

import (
	"bytes"
	"context"
	"html/template"

	"github.com/rs/zerolog"

	"mintwatch/internal/classifier"
	"mintwatch/internal/domain"
	"mintwatch/internal/log"
	"mintwatch/internal/metrics"
	"mintwatch/internal/notifier"
	"mintwatch/internal/queue"
	"mintwatch/internal/storage"
)

type Broadcaster interface {
	Broadcast(msg string)
}

type SnapshotReader interface {
	GetSnapshot(ctx context.Context, launch string) (*domain.Snapshot, error)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string) {}

type Consumer struct {
	consumer    queue.Consumer
	repo        storage.TransitionRepository
	snapshots   SnapshotReader
	notifier    notifier.Notifier
	broadcaster Broadcaster
	display     classifier.Display
	feedTmpl    *template.Template
	logger      zerolog.Logger
}

// NewConsumer builds the transition consumer. b may be nil when no UI is
// attached to this process.
func NewConsumer(c queue.Consumer, r storage.TransitionRepository, s SnapshotReader, n notifier.Notifier, b Broadcaster, d classifier.Display) *Consumer {
	tmpl := template.Must(template.New("transition-item").Parse(`
<div class="item {{.To}}">
    <div class="item-head">
        <div class="item-launch">{{.Launch}}</div>
        <div class="item-time">{{.At}}</div>
    </div>
    <div class="item-body">{{.From}} &rarr; {{.To}}</div>
    {{if .Header}}
    <div class="tag">{{.Header.Name}}: {{.Header.Description}}</div>
    {{end}}
</div>`))

	if b == nil {
		b = nopBroadcaster{}
	}

	return &Consumer{
		consumer:    c,
		repo:        r,
		snapshots:   s,
		notifier:    n,
		broadcaster: b,
		display:     d,
		feedTmpl:    tmpl,
		logger:      log.WithComponent("consumer"),
	}
}

func (w *Consumer) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleTransition)
}

func (w *Consumer) handleTransition(ctx context.Context, t domain.Transition) error {
	w.logger.Info().
		Str("launch", t.Launch).
		Stringer("from", t.From).
		Stringer("to", t.To).
		Msg("transition received")

	if err := w.repo.Save(ctx, t); err != nil {
		w.logger.Error().Err(err).Str("id", t.ID).Msg("save transition")
		return err
	}
	metrics.RecordTransition(t)

	n := notifier.Notification{Transition: t}
	snap, err := w.snapshots.GetSnapshot(ctx, t.Launch)
	if err != nil {
		w.logger.Warn().Err(err).Str("launch", t.Launch).Msg("load snapshot")
	}
	if snap != nil {
		n.Header, n.HasHeader = classifier.HeaderFor(t.To, snap.FairLaunch, snap.CandyMachine, w.display)
	}

	view := map[string]any{
		"Launch": t.Launch,
		"From":   t.From.String(),
		"To":     t.To.String(),
		"At":     t.At.UTC().Format("15:04:05"),
		"Header": nil,
	}
	if n.HasHeader {
		view["Header"] = n.Header
	}

	var buf bytes.Buffer
	if err := w.feedTmpl.Execute(&buf, view); err == nil {
		w.broadcaster.Broadcast(buf.String())
	} else {
		w.logger.Error().Err(err).Msg("render transition")
	}

	if err := w.notifier.Notify(ctx, n); err != nil {
		w.logger.Error().Err(err).Str("launch", t.Launch).Msg("notify")
	}

	return nil
}
