package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	StreamName     = "JOURNAL"
	SubjectPrefix  = "journal."
	SubjectPattern = "journal.>"
)

// Subject : journal.friend.requested, journal.comment.created...
func Subject(t domain.EventType) string { return SubjectPrefix + string(t) }

// EnsureStream crée le stream s'il n'existe pas (idempotent).
func EnsureStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectPattern},
		Storage:    jetstream.FileStorage,
		Replicas:   1,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return stream, nil
}

type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish injecte le contexte de trace dans les headers et utilise l'ID de
// l'événement comme Nats-Msg-Id pour la déduplication côté serveur.
func (p *NatsPublisher) Publish(ctx context.Context, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: Subject(evt.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	ack, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(evt.ID))
	if err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	slog.DebugContext(ctx, "📢 event published", "subject", msg.Subject, "event_id", evt.ID, "seq", ack.Sequence)
	return nil
}
