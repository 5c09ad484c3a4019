package services

import (
	"context"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type interactionService struct {
	diaries   ports.DiaryRepository
	comments  ports.CommentRepository
	likes     ports.LikeRepository
	friends   ports.FriendStore
	publisher ports.EventPublisher
	builder   *filters.Builder
	obs       ports.ListingObserver
}

func NewInteractionService(
	diaries ports.DiaryRepository,
	comments ports.CommentRepository,
	likes ports.LikeRepository,
	friends ports.FriendStore,
	pub ports.EventPublisher,
	builder *filters.Builder,
	obs ports.ListingObserver,
) ports.InteractionService {
	return &interactionService{
		diaries:   diaries,
		comments:  comments,
		likes:     likes,
		friends:   friends,
		publisher: pub,
		builder:   builder,
		obs:       obs,
	}
}

func (s *interactionService) AddComment(ctx context.Context, viewerID, id int64, content string) (*domain.Comment, error) {
	d, err := readableDiary(ctx, s.diaries, s.friends, viewerID, id)
	if err != nil {
		return nil, err
	}
	c, err := domain.NewComment(d.ID, viewerID, content)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Save(ctx, c); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, domain.Event{
		Type:        domain.EventCommentCreated,
		ActorID:     viewerID,
		RecipientID: d.MemberID,
		DiaryID:     d.ID,
	})
	return c, nil
}

func (s *interactionService) ListComments(ctx context.Context, viewerID, id int64, req listing.PageRequest) (listing.Page[*domain.Comment], error) {
	d, err := readableDiary(ctx, s.diaries, s.friends, viewerID, id)
	if err != nil {
		return listing.Page[*domain.Comment]{}, err
	}
	pred := s.builder.Comment(filters.CommentCriteria{DiaryID: &d.ID})
	return paginate(ctx, s.obs, ports.CommentList, s.comments, pred, req, commentID)
}

// Like renvoie le nombre de likes après l'opération.
func (s *interactionService) Like(ctx context.Context, viewerID, id int64) (int, error) {
	d, err := readableDiary(ctx, s.diaries, s.friends, viewerID, id)
	if err != nil {
		return 0, err
	}
	created, err := s.likes.Add(ctx, d.ID, viewerID)
	if err != nil {
		return 0, err
	}
	if created {
		publish(ctx, s.publisher, domain.Event{
			Type:        domain.EventDiaryLiked,
			ActorID:     viewerID,
			RecipientID: d.MemberID,
			DiaryID:     d.ID,
		})
	}
	return s.likes.Count(ctx, d.ID)
}

func (s *interactionService) Unlike(ctx context.Context, viewerID, id int64) (int, error) {
	d, err := readableDiary(ctx, s.diaries, s.friends, viewerID, id)
	if err != nil {
		return 0, err
	}
	if err := s.likes.Remove(ctx, d.ID, viewerID); err != nil {
		return 0, err
	}
	return s.likes.Count(ctx, d.ID)
}
