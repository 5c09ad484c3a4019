package rest

import (
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// pageBody produit { "<champ>": [...], "next": <curseur|null> }.
func pageBody[T, U any](field string, p listing.Page[T], fn func(T) U) map[string]any {
	mapped := listing.Map(p, fn)
	return map[string]any{
		field:  mapped.Items,
		"next": mapped.NextToken(),
	}
}

type memberDTO struct {
	ID           int64  `json:"id"`
	Nickname     string `json:"nickname"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func toMemberDTO(m *domain.Member) memberDTO {
	return memberDTO{ID: m.ID, Nickname: m.Nickname, Email: m.Email, ProfileImage: m.ProfileImage}
}

type locationDTO struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Address   string  `json:"address,omitempty" validate:"max=255"`
}

type diaryDTO struct {
	ID         int64        `json:"id"`
	MemberID   int64        `json:"memberId"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Emoji      string       `json:"emoji,omitempty"`
	CategoryID *int64       `json:"categoryId,omitempty"`
	Location   *locationDTO `json:"location,omitempty"`
	IsPublic   bool         `json:"isPublic"`
	IsBookmark *bool        `json:"isBookmark,omitempty"`
	LikeCount  *int         `json:"likeCount,omitempty"`
	Liked      *bool        `json:"liked,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// toDiaryDTO : le marque-page est une donnée privée de l'auteur.
func toDiaryDTO(viewerID int64) func(*domain.Diary) diaryDTO {
	return func(d *domain.Diary) diaryDTO {
		out := diaryDTO{
			ID:         d.ID,
			MemberID:   d.MemberID,
			Title:      d.Title,
			Content:    d.Content,
			Emoji:      d.Emoji,
			CategoryID: d.CategoryID,
			IsPublic:   d.IsPublic,
			CreatedAt:  d.CreatedAt,
		}
		if d.Location != nil {
			out.Location = &locationDTO{Latitude: d.Location.Latitude, Longitude: d.Location.Longitude, Address: d.Location.Address}
		}
		if d.OwnedBy(viewerID) {
			b := d.IsBookmark
			out.IsBookmark = &b
		}
		return out
	}
}

func withLikes(dto diaryDTO, d *domain.Diary) diaryDTO {
	n, liked := d.LikeCount, d.Liked
	dto.LikeCount = &n
	dto.Liked = &liked
	return dto
}

type requestDTO struct {
	ID        int64      `json:"id"`
	Sender    *memberDTO `json:"sender,omitempty"`
	SenderID  int64      `json:"senderId"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toRequestDTO(r *domain.FriendRequest) requestDTO {
	out := requestDTO{ID: r.ID, SenderID: r.SenderID, CreatedAt: r.CreatedAt}
	if r.Sender != nil {
		m := toMemberDTO(r.Sender)
		out.Sender = &m
	}
	return out
}

type commentDTO struct {
	ID        int64     `json:"id"`
	DiaryID   int64     `json:"diaryId"`
	MemberID  int64     `json:"memberId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentDTO(c *domain.Comment) commentDTO {
	return commentDTO{ID: c.ID, DiaryID: c.DiaryID, MemberID: c.MemberID, Content: c.Content, CreatedAt: c.CreatedAt}
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// --- REQUÊTES ---

type createDiaryRequest struct {
	Title      string       `json:"title" validate:"required,max=100"`
	Content    string       `json:"content" validate:"max=10000"`
	Emoji      string       `json:"emoji" validate:"max=16"`
	CategoryID *int64       `json:"categoryId" validate:"omitempty,gt=0"`
	Location   *locationDTO `json:"location" validate:"omitempty"`
	IsPublic   bool         `json:"isPublic"`
}

type bookmarkRequest struct {
	Bookmark *bool `json:"bookmark" validate:"required"`
}

type friendRequestBody struct {
	ReceiverID int64 `json:"receiverId" validate:"required,gt=0"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=30"`
}
