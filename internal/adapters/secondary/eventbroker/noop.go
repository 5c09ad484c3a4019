package eventbroker

import (
	"context"
	"log/slog"

	"github.com/jupiterclapton/journal/internal/core/domain"
)

// LogPublisher remplace NATS en mode mémoire : les événements sont seulement tracés.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, evt domain.Event) error {
	slog.InfoContext(ctx, "event (not published)", "type", evt.Type, "actor_id", evt.ActorID, "recipient_id", evt.RecipientID)
	return nil
}
