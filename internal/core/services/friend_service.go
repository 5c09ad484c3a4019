package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type friendService struct {
	members   ports.MemberRepository
	requests  ports.FriendRequestRepository
	friends   ports.FriendStore
	acceptor  ports.FriendshipAcceptor
	publisher ports.EventPublisher
	builder   *filters.Builder
	obs       ports.ListingObserver
}

func NewFriendService(
	members ports.MemberRepository,
	requests ports.FriendRequestRepository,
	friends ports.FriendStore,
	acceptor ports.FriendshipAcceptor,
	pub ports.EventPublisher,
	builder *filters.Builder,
	obs ports.ListingObserver,
) ports.FriendService {
	return &friendService{
		members:   members,
		requests:  requests,
		friends:   friends,
		acceptor:  acceptor,
		publisher: pub,
		builder:   builder,
		obs:       obs,
	}
}

// ListFriends liste les amis de ownerID (le lecteur lui-même le plus souvent).
func (s *friendService) ListFriends(ctx context.Context, viewerID, ownerID int64, c filters.MemberCriteria, req listing.PageRequest) (listing.Page[*domain.Member], error) {
	if ownerID != viewerID {
		ok, err := s.members.Exists(ctx, ownerID)
		if err != nil {
			return listing.Page[*domain.Member]{}, err
		}
		if !ok {
			return listing.Page[*domain.Member]{}, domain.ErrMemberNotFound
		}
	}

	ids, err := s.friends.FriendIDs(ctx, ownerID)
	if err != nil {
		return listing.Page[*domain.Member]{}, err
	}
	// Vide et non nil : aucun ami => aucun résultat
	c.IDs = append([]int64{}, ids...)
	c.ExcludeID = nil

	return paginate(ctx, s.obs, ports.FriendList, s.members, s.builder.Member(c), req, memberID)
}

func (s *friendService) ListRequests(ctx context.Context, viewerID int64, req listing.PageRequest) (listing.Page[*domain.FriendRequest], error) {
	pred := s.builder.FriendRequest(filters.FriendRequestCriteria{ReceiverID: &viewerID})
	return paginate(ctx, s.obs, ports.RequestInbox, s.requests, pred, req, requestID)
}

func (s *friendService) SendRequest(ctx context.Context, viewerID, receiverID int64) (*domain.FriendRequest, error) {
	if viewerID == receiverID {
		return nil, domain.ErrSelfRequest
	}
	ok, err := s.members.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrMemberNotFound
	}

	already, err := s.friends.IsFriend(ctx, viewerID, receiverID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, domain.ErrAlreadyFriends
	}

	// Une demande en attente dans un sens ou dans l'autre bloque la nouvelle
	for _, pair := range [][2]int64{{viewerID, receiverID}, {receiverID, viewerID}} {
		_, err := s.requests.FindPending(ctx, pair[0], pair[1])
		if err == nil {
			return nil, domain.ErrDuplicateRequest
		}
		if !errors.Is(err, domain.ErrRequestNotFound) {
			return nil, err
		}
	}

	req := &domain.FriendRequest{SenderID: viewerID, ReceiverID: receiverID}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, domain.Event{
		Type:        domain.EventFriendRequested,
		ActorID:     viewerID,
		RecipientID: receiverID,
		RequestID:   req.ID,
	})
	return req, nil
}

// AcceptRequest crée les deux arêtes et efface la demande. Avec un acceptor
// tout passe dans une transaction ; sinon (amitiés dans Neo4j) Link est
// idempotent et rejouer l'acceptation après un échec partiel est sans risque.
func (s *friendService) AcceptRequest(ctx context.Context, viewerID, requestID int64) error {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ReceiverID != viewerID {
		return domain.ErrRequestNotFound
	}

	if s.acceptor != nil {
		err = s.acceptor.Accept(ctx, req.SenderID, req.ReceiverID)
	} else {
		err = s.linkThenClear(ctx, req.SenderID, req.ReceiverID)
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "friendship created", "a", req.SenderID, "b", req.ReceiverID)
	publish(ctx, s.publisher, domain.Event{
		Type:        domain.EventFriendAccepted,
		ActorID:     viewerID,
		RecipientID: req.SenderID,
		RequestID:   req.ID,
	})
	return nil
}

func (s *friendService) linkThenClear(ctx context.Context, a, b int64) error {
	if err := s.friends.Link(ctx, a, b); err != nil {
		return err
	}
	return s.requests.DeleteBetween(ctx, a, b)
}

// RejectRequest : le destinataire refuse, ou l'émetteur annule.
func (s *friendService) RejectRequest(ctx context.Context, viewerID, requestID int64) error {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ReceiverID != viewerID && req.SenderID != viewerID {
		return domain.ErrRequestNotFound
	}
	return s.requests.Delete(ctx, requestID)
}

func (s *friendService) Unfriend(ctx context.Context, viewerID, friendID int64) error {
	ok, err := s.friends.IsFriend(ctx, viewerID, friendID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFriends
	}
	return s.friends.Unlink(ctx, viewerID, friendID)
}
