package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/internal/core/visibility"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// paginate : une page = une lecture de stockage, mesurée par l'observer.
func paginate[T any](ctx context.Context, obs ports.ListingObserver, ep ports.Endpoint, f listing.Fetcher[T], pred listing.Predicate[T], req listing.PageRequest, id func(T) int64) (listing.Page[T], error) {
	req = ep.Normalize(req)
	start := time.Now()

	page, err := listing.Paginate(ctx, f, pred, ep.Order, req, id)
	if obs != nil {
		obs.ObservePage(ep.Name, ep.Strategy, len(page.Items), page.Next != nil, time.Since(start), err)
	}
	if err != nil {
		return listing.Page[T]{}, fmt.Errorf("list %s: %w", ep.Name, err)
	}

	slog.DebugContext(ctx, "page served",
		"endpoint", ep.Name,
		"cursor", req.Cursor.String(),
		"size", req.Size,
		"items", len(page.Items),
		"has_more", page.Next != nil,
	)
	return page, nil
}

func memberID(m *domain.Member) int64         { return m.ID }
func diaryID(d *domain.Diary) int64           { return d.ID }
func requestID(r *domain.FriendRequest) int64 { return r.ID }
func commentID(c *domain.Comment) int64       { return c.ID }

// readableDiary charge une entrée et vérifie que le lecteur peut la voir.
// Une entrée invisible est rapportée comme inexistante.
func readableDiary(ctx context.Context, diaries ports.DiaryRepository, friends ports.FriendStore, viewerID, id int64) (*domain.Diary, error) {
	d, err := diaries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnedBy(viewerID) {
		return d, nil
	}
	if !d.IsPublic {
		return nil, domain.ErrDiaryNotFound
	}
	ok, err := friends.IsFriend(ctx, viewerID, d.MemberID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanRead(d, viewerID, ok) {
		return nil, domain.ErrDiaryNotFound
	}
	return d, nil
}

// publish est best-effort : la donnée est déjà sauvée, on ne fait pas échouer la requête.
func publish(ctx context.Context, pub ports.EventPublisher, evt domain.Event) {
	if pub == nil || evt.ActorID == evt.RecipientID {
		return
	}
	evt.ID = uuid.NewString()
	evt.OccurredAt = time.Now().UTC()
	if err := pub.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "event publish failed", "type", evt.Type, "error", err)
	}
}
