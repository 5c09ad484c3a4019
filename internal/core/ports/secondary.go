package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// Les repositories renvoient les erreurs du domaine (ErrXxxNotFound) et
// exposent une fenêtre de lecture via listing.Fetcher.

type MemberRepository interface {
	listing.Fetcher[*domain.Member]
	Save(ctx context.Context, m *domain.Member) error
	FindByID(ctx context.Context, id int64) (*domain.Member, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type DiaryRepository interface {
	listing.Fetcher[*domain.Diary]
	Save(ctx context.Context, d *domain.Diary) error
	FindByID(ctx context.Context, id int64) (*domain.Diary, error)
	UpdateBookmark(ctx context.Context, id int64, bookmark bool, at time.Time) error
	// Delete supprime aussi commentaires et likes.
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Save(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	ListByMember(ctx context.Context, memberID int64) ([]*domain.Category, error)
}

// FriendStore gère les arêtes d'amitié. Link et Unlink écrivent toujours les
// deux lignes orientées dans une seule unité de travail.
type FriendStore interface {
	IsFriend(ctx context.Context, ownerID, friendID int64) (bool, error)
	FriendIDs(ctx context.Context, ownerID int64) ([]int64, error)
	Link(ctx context.Context, a, b int64) error
	Unlink(ctx context.Context, a, b int64) error
}

type FriendRequestRepository interface {
	listing.Fetcher[*domain.FriendRequest]
	Save(ctx context.Context, r *domain.FriendRequest) error
	FindByID(ctx context.Context, id int64) (*domain.FriendRequest, error)
	// FindPending renvoie ErrRequestNotFound s'il n'y a pas de demande sender -> receiver.
	FindPending(ctx context.Context, senderID, receiverID int64) (*domain.FriendRequest, error)
	Delete(ctx context.Context, id int64) error
	// DeleteBetween supprime les demandes en attente dans les deux sens.
	DeleteBetween(ctx context.Context, a, b int64) error
}

// FriendshipAcceptor écrit les deux arêtes et efface les demandes de la paire
// en une seule transaction. Seulement quand amitiés et demandes partagent le stockage.
type FriendshipAcceptor interface {
	Accept(ctx context.Context, senderID, receiverID int64) error
}

type CommentRepository interface {
	listing.Fetcher[*domain.Comment]
	Save(ctx context.Context, c *domain.Comment) error
}

type LikeRepository interface {
	// Add est idempotent ; created indique si le like est nouveau.
	Add(ctx context.Context, diaryID, memberID int64) (created bool, err error)
	Remove(ctx context.Context, diaryID, memberID int64) error
	Count(ctx context.Context, diaryID int64) (int, error)
	Has(ctx context.Context, diaryID, memberID int64) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

// Pusher est le transport de notification (APNs/FCM en prod).
type Pusher interface {
	Push(ctx context.Context, n domain.Notification) error
}

// ListingObserver reçoit une mesure par page servie.
type ListingObserver interface {
	ObservePage(endpoint string, strategy listing.Strategy, items int, hasMore bool, elapsed time.Duration, err error)
}
