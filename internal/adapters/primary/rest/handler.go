package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type diaryLister func(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error)

type Handler struct {
	members      ports.MemberService
	friends      ports.FriendService
	diaries      ports.DiaryService
	interactions ports.InteractionService
	paging       Paging
	validate     *validator.Validate
}

func NewHandler(
	members ports.MemberService,
	friends ports.FriendService,
	diaries ports.DiaryService,
	interactions ports.InteractionService,
	paging Paging,
) *Handler {
	return &Handler{
		members:      members,
		friends:      friends,
		diaries:      diaries,
		interactions: interactions,
		paging:       paging,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// viewer : Auth garantit sa présence sur toutes les routes de l'API.
func viewer(ctx context.Context) int64 {
	id, _ := ViewerFrom(ctx)
	return id
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return h.validate.Struct(dst)
}

// --- MEMBERS ---

func (h *Handler) SearchMembers(w http.ResponseWriter, r *http.Request) {
	c, err := parseMemberCriteria(h.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.members.SearchMembers(r.Context(), viewer(r.Context()), c, h.paging.pageRequest(r, ports.MemberSearch))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("members", page, toMemberDTO))
}

// --- FRIENDS ---

func (h *Handler) ListMyFriends(w http.ResponseWriter, r *http.Request) {
	h.listFriends(w, r, viewer(r.Context()))
}

func (h *Handler) ListMemberFriends(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.listFriends(w, r, owner)
}

func (h *Handler) listFriends(w http.ResponseWriter, r *http.Request, owner int64) {
	c, err := parseMemberCriteria(h.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.friends.ListFriends(r.Context(), viewer(r.Context()), owner, c, h.paging.pageRequest(r, ports.FriendList))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("friends", page, toMemberDTO))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	page, err := h.friends.ListRequests(r.Context(), viewer(r.Context()), h.paging.pageRequest(r, ports.RequestInbox))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("requests", page, toRequestDTO))
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var body friendRequestBody
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.friends.SendRequest(r.Context(), viewer(r.Context()), body.ReceiverID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "requestID")
	if err == nil {
		err = h.friends.AcceptRequest(r.Context(), viewer(r.Context()), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "requestID")
	if err == nil {
		err = h.friends.RejectRequest(r.Context(), viewer(r.Context()), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Unfriend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "memberID")
	if err == nil {
		err = h.friends.Unfriend(r.Context(), viewer(r.Context()), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- DIARIES ---

func (h *Handler) ListOwnDiaries(w http.ResponseWriter, r *http.Request) {
	h.listDiaries(w, r, ports.OwnDiaries, h.diaries.ListOwn)
}

func (h *Handler) ListFeed(w http.ResponseWriter, r *http.Request) {
	h.listDiaries(w, r, ports.FriendFeed, h.diaries.ListFeed)
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.listDiaries(w, r, ports.Explore, h.diaries.ListPublic)
}

func (h *Handler) ListMemberDiaries(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.listDiaries(w, r, ports.MemberDiary, func(ctx context.Context, viewerID int64, c filters.DiaryCriteria, req listing.PageRequest) (listing.Page[*domain.Diary], error) {
		return h.diaries.ListMember(ctx, viewerID, owner, c, req)
	})
}

func (h *Handler) listDiaries(w http.ResponseWriter, r *http.Request, ep ports.Endpoint, list diaryLister) {
	c, err := parseDiaryCriteria(h.validate, r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	viewerID := viewer(r.Context())
	page, err := list(r.Context(), viewerID, c, h.paging.pageRequest(r, ep))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("diaries", page, toDiaryDTO(viewerID)))
}

func (h *Handler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	var body createDiaryRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	cmd := ports.CreateDiaryCmd{
		Title:      body.Title,
		Content:    body.Content,
		Emoji:      body.Emoji,
		CategoryID: body.CategoryID,
		IsPublic:   body.IsPublic,
	}
	if body.Location != nil {
		cmd.Location = &domain.Location{Latitude: body.Location.Latitude, Longitude: body.Location.Longitude, Address: body.Location.Address}
	}

	viewerID := viewer(r.Context())
	d, err := h.diaries.CreateDiary(r.Context(), viewerID, cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDiaryDTO(viewerID)(d))
}

func (h *Handler) GetDiary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	viewerID := viewer(r.Context())
	d, err := h.diaries.GetDiary(r.Context(), viewerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withLikes(toDiaryDTO(viewerID)(d), d))
}

func (h *Handler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryID")
	if err == nil {
		err = h.diaries.DeleteDiary(r.Context(), viewer(r.Context()), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body bookmarkRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	viewerID := viewer(r.Context())
	d, err := h.diaries.SetBookmark(r.Context(), viewerID, id, *body.Bookmark)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiaryDTO(viewerID)(d))
}

// --- CATEGORIES ---

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	cat, err := h.diaries.CreateCategory(r.Context(), viewer(r.Context()), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryDTO{ID: cat.ID, Name: cat.Name})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.diaries.ListCategories(r.Context(), viewer(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryDTO, len(cats))
	for i, c := range cats {
		out[i] = categoryDTO{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

// --- COMMENTS & LIKES ---

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.interactions.ListComments(r.Context(), viewer(r.Context()), id, h.paging.pageRequest(r, ports.CommentList))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageBody("comments", page, toCommentDTO))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body commentRequest
	if err := h.decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.interactions.AddComment(r.Context(), viewer(r.Context()), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(c))
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.interactions.Like)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.interactions.Unlike)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) (int, error)) {
	id, err := pathID(r, "diaryID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := op(r.Context(), viewer(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likeCount": n})
}
