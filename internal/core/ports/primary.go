package ports

import (
	"context"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// Toutes les opérations reçoivent explicitement l'identifiant du lecteur.

type MemberService interface {
	GetMember(ctx context.Context, memberID int64) (*domain.Member, error)
	SearchMembers(ctx context.Context, viewerID int64, c filters.MemberCriteria, req listing.PageRequest) (listing.Page[*domain.Member], error)
}

type FriendService interface {
	ListFriends(ctx context.Context, viewerID, ownerID int64, c filters.MemberCriteria, req listing.PageRequest) (listing.Page[*domain.Member], error)
	ListRequests(ctx context.Context, viewerID int64, req listing.PageRequest) (listing.Page[*domain.FriendRequest], error)
	SendRequest(ctx context.Context, viewerID, receiverID int64) (*domain.FriendRequest, error)
	AcceptRequest(ctx context.Context, viewerID, requestID int64) error
	RejectRequest(ctx context.Context, viewerID, requestID int64) error
	Unfriend(ctx context.Context, viewerID, friendID int64) error
}

type CreateDiaryCmd struct {
	Title      string
	Content    string
	Emoji      string
	CategoryID *int64
	Location   *domain.Location
	IsPublic   bool
}

type DiaryService interface {
	CreateDiary(ctx context.Context, viewerID int64, cmd CreateDiaryCmd) (*domain.Diary, error)
	GetDiary(ctx context.Context, viewerID, diaryID int64) (*domain.Diary, error)
	DeleteDiary(ctx context.Context, viewerID, diaryID int64) error
	SetBookmark(ctx context.Context, viewerID, diaryID int64, bookmark bool) (*domain.Diary, error)

	ListOwn(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error)
	ListMember(ctx context.Context, viewerID, ownerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error)
	ListFeed(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error)
	ListPublic(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error)

	CreateCategory(ctx context.Context, viewerID int64, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, viewerID int64) ([]*domain.Category, error)
}

type InteractionService interface {
	AddComment(ctx context.Context, viewerID, diaryID int64, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, viewerID, diaryID int64, req listing.PageRequest) (listing.Page[*domain.Comment], error)
	Like(ctx context.Context, viewerID, diaryID int64) (int, error)
	Unlike(ctx context.Context, viewerID, diaryID int64) (int, error)
}

// NotificationService transforme un événement en notification push.
type NotificationService interface {
	Handle(ctx context.Context, evt domain.Event) error
}
