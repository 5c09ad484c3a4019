// Package push livre les notifications. Le transport réel (APNs/FCM) n'est
// pas branché : LogSender trace les envois.
package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/sony/gobreaker"
)

type LogSender struct{}

func (LogSender) Push(ctx context.Context, n domain.Notification) error {
	slog.InfoContext(ctx, "🔔 push", "recipient_id", n.RecipientID, "title", n.Title, "body", n.Body)
	return nil
}

// BreakerPusher coupe le transport après des échecs répétés ; les messages
// sont alors renvoyés en erreur et redélivrés par JetStream plus tard.
type BreakerPusher struct {
	next ports.Pusher
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerPusher(next ports.Pusher) *BreakerPusher {
	return &BreakerPusher{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "push",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     20 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= 10 && float64(c.TotalFailures)/float64(c.Requests) >= 0.5
			},
		}),
	}
}

func (p *BreakerPusher) Push(ctx context.Context, n domain.Notification) error {
	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.next.Push(ctx, n)
	})
	return err
}

func (p *BreakerPusher) State() gobreaker.State { return p.cb.State() }
