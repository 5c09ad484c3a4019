package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jupiterclapton/journal/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const DurableName = "notifier"

type EventHandler struct {
	service ports.NotificationService
	timeout time.Duration
}

func NewEventHandler(service ports.NotificationService) *EventHandler {
	return &EventHandler{service: service, timeout: 10 * time.Second}
}

// Message est la partie de jetstream.Msg utilisée par le handler.
type Message interface {
	Data() []byte
	Headers() nats.Header
	Subject() string
	Ack() error
	Nak() error
	Term() error
}

// Handle traite un message : Ack si OK, Nak pour réessayer, Term si le
// message est illisible (le rejouer n'y changerait rien).
func (h *EventHandler) Handle(msg Message) {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(msg.Headers()))
	ctx, span := otel.Tracer("journal-notifier").Start(ctx, "process "+msg.Subject(), trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var evt domain.Event
	if err := json.Unmarshal(msg.Data(), &evt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		slog.ErrorContext(ctx, "❌ Invalid event format", "subject", msg.Subject(), "error", err)
		_ = msg.Term()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.service.Handle(ctx, evt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "❌ Notification failed", "event_id", evt.ID, "type", evt.Type, "error", err)
		_ = msg.Nak()
		return
	}

	slog.DebugContext(ctx, "📨 event handled", "event_id", evt.ID, "type", evt.Type)
	_ = msg.Ack()
}

// Subscribe crée (ou reprend) le consumer durable et commence la consommation.
// Le ConsumeContext renvoyé doit être stoppé à l'arrêt.
func Subscribe(ctx context.Context, stream jetstream.Stream, h *EventHandler) (jetstream.ConsumeContext, error) {
	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       DurableName,
		FilterSubject: eventbroker.SubjectPattern,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) { h.Handle(msg) })
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	slog.Info("👂 Listening for events (JetStream)", "stream", eventbroker.StreamName, "durable", DurableName)
	return cc, nil
}
