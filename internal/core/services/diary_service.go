package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/internal/core/visibility"
	"github.com/jupiterclapton/journal/pkg/listing"
)

const maxCategoryName = 30

type DiaryDeps struct {
	Diaries    ports.DiaryRepository
	Categories ports.CategoryRepository
	Members    ports.MemberRepository
	Friends    ports.FriendStore
	Likes      ports.LikeRepository
	Builder    *filters.Builder
	Observer   ports.ListingObserver
}

type diaryService struct {
	DiaryDeps
}

func NewDiaryService(deps DiaryDeps) ports.DiaryService {
	return &diaryService{DiaryDeps: deps}
}

func (s *diaryService) CreateDiary(ctx context.Context, viewerID int64, cmd ports.CreateDiaryCmd) (*domain.Diary, error) {
	if cmd.CategoryID != nil {
		cat, err := s.Categories.FindByID(ctx, *cmd.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat.MemberID != viewerID {
			return nil, domain.ErrCategoryNotFound
		}
	}

	d, err := domain.NewDiary(viewerID, cmd.Title, cmd.Content, cmd.Emoji, cmd.CategoryID, cmd.Location, cmd.IsPublic)
	if err != nil {
		return nil, err
	}
	if err := s.Diaries.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *diaryService) GetDiary(ctx context.Context, viewerID, id int64) (*domain.Diary, error) {
	d, err := readableDiary(ctx, s.Diaries, s.Friends, viewerID, id)
	if err != nil {
		return nil, err
	}

	if d.LikeCount, err = s.Likes.Count(ctx, d.ID); err != nil {
		return nil, err
	}
	if d.Liked, err = s.Likes.Has(ctx, d.ID, viewerID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *diaryService) DeleteDiary(ctx context.Context, viewerID, id int64) error {
	d, err := s.owned(ctx, viewerID, id)
	if err != nil {
		return err
	}
	return s.Diaries.Delete(ctx, d.ID)
}

func (s *diaryService) SetBookmark(ctx context.Context, viewerID, id int64, bookmark bool) (*domain.Diary, error) {
	d, err := s.owned(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	d.SetBookmark(bookmark)
	if err := s.Diaries.UpdateBookmark(ctx, d.ID, d.IsBookmark, d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

// owned : seules les entrées de l'auteur sont modifiables.
func (s *diaryService) owned(ctx context.Context, viewerID, id int64) (*domain.Diary, error) {
	d, err := readableDiary(ctx, s.Diaries, s.Friends, viewerID, id)
	if err != nil {
		return nil, err
	}
	if !d.OwnedBy(viewerID) {
		return nil, domain.ErrForbidden
	}
	return d, nil
}

// --- LISTES ---

func (s *diaryService) ListOwn(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error) {
	pred := visibility.Scope(s.Builder.Diary(c), viewerID, visibility.Self, nil)
	return paginate(ctx, s.Observer, ports.OwnDiaries, s.Diaries, pred, req, diaryID)
}

// ListMember : la chronologie d'un membre vue par le lecteur. Un non-ami
// obtient une liste vide, un membre inconnu une erreur.
func (s *diaryService) ListMember(ctx context.Context, viewerID, ownerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error) {
	if ownerID == viewerID {
		pred := visibility.Scope(s.Builder.Diary(c), viewerID, visibility.Self, nil)
		return paginate(ctx, s.Observer, ports.MemberDiary, s.Diaries, pred, req, diaryID)
	}

	ok, err := s.Members.Exists(ctx, ownerID)
	if err != nil {
		return listing.Page[*domain.Diary]{}, err
	}
	if !ok {
		return listing.Page[*domain.Diary]{}, domain.ErrMemberNotFound
	}

	isFriend, err := s.Friends.IsFriend(ctx, viewerID, ownerID)
	if err != nil {
		return listing.Page[*domain.Diary]{}, err
	}
	var friends []int64
	if isFriend {
		friends = []int64{ownerID}
	}

	c.AuthorID = &ownerID
	pred := visibility.Scope(s.Builder.Diary(c), viewerID, visibility.Friend, friends)
	return paginate(ctx, s.Observer, ports.MemberDiary, s.Diaries, pred, req, diaryID)
}

// ListFeed : entrées publiques de tous les amis, les plus récentes d'abord.
func (s *diaryService) ListFeed(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error) {
	friends, err := s.Friends.FriendIDs(ctx, viewerID)
	if err != nil {
		return listing.Page[*domain.Diary]{}, err
	}
	pred := visibility.Scope(s.Builder.Diary(c), viewerID, visibility.Friend, friends)
	return paginate(ctx, s.Observer, ports.FriendFeed, s.Diaries, pred, req, diaryID)
}

func (s *diaryService) ListPublic(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error) {
	pred := visibility.Scope(s.Builder.Diary(c), viewerID, visibility.Public, nil)
	return paginate(ctx, s.Observer, ports.Explore, s.Diaries, pred, req, diaryID)
}

// --- CATÉGORIES ---

func (s *diaryService) CreateCategory(ctx context.Context, viewerID int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxCategoryName {
		return nil, fmt.Errorf("%w: category name must be 1-%d characters", domain.ErrInvalidInput, maxCategoryName)
	}
	cat := &domain.Category{MemberID: viewerID, Name: name, CreatedAt: time.Now().UTC()}
	if err := s.Categories.Save(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *diaryService) ListCategories(ctx context.Context, viewerID int64) ([]*domain.Category, error) {
	return s.Categories.ListByMember(ctx, viewerID)
}
