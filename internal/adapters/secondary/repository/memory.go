package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// MemoryStore garde toutes les tables en RAM (STORE=memory, tests).
// Les prédicats y sont évalués via Match au lieu du SQL.
type MemoryStore struct {
	mu         sync.RWMutex
	seq        int64
	members    map[int64]domain.Member
	diaries    map[int64]domain.Diary
	categories map[int64]domain.Category
	requests   map[int64]domain.FriendRequest
	comments   map[int64]domain.Comment
	edges      map[[2]int64]time.Time
	likes      map[[2]int64]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:    map[int64]domain.Member{},
		diaries:    map[int64]domain.Diary{},
		categories: map[int64]domain.Category{},
		requests:   map[int64]domain.FriendRequest{},
		comments:   map[int64]domain.Comment{},
		edges:      map[[2]int64]time.Time{},
		likes:      map[[2]int64]time.Time{},
	}
}

func (s *MemoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// --- MEMBERS ---

type memoryMembers struct{ s *MemoryStore }

func (s *MemoryStore) Members() ports.MemberRepository { return memoryMembers{s} }

func (r memoryMembers) Save(_ context.Context, m *domain.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.s.nextID()
	} else if m.ID > r.s.seq {
		r.s.seq = m.ID
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.s.members[m.ID] = *m
	return nil
}

func (r memoryMembers) FindByID(_ context.Context, id int64) (*domain.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (r memoryMembers) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.members[id]
	return ok, nil
}

func (r memoryMembers) Fetch(ctx context.Context, w listing.Window[*domain.Member]) ([]*domain.Member, error) {
	return listing.SliceFetcher[*domain.Member]{
		Items: func() []*domain.Member {
			r.s.mu.RLock()
			defer r.s.mu.RUnlock()
			return snapshot(r.s.members)
		},
		ID:        func(m *domain.Member) int64 { return m.ID },
		CreatedAt: func(m *domain.Member) time.Time { return m.CreatedAt },
	}.Fetch(ctx, w)
}

// --- DIARIES ---

type memoryDiaries struct{ s *MemoryStore }

func (s *MemoryStore) Diaries() ports.DiaryRepository { return memoryDiaries{s} }

func (r memoryDiaries) Save(_ context.Context, d *domain.Diary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.ID == 0 {
		d.ID = r.s.nextID()
	} else if d.ID > r.s.seq {
		r.s.seq = d.ID
	}
	r.s.diaries[d.ID] = *d
	return nil
}

func (r memoryDiaries) FindByID(_ context.Context, id int64) (*domain.Diary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.diaries[id]
	if !ok {
		return nil, domain.ErrDiaryNotFound
	}
	return &d, nil
}

func (r memoryDiaries) UpdateBookmark(_ context.Context, id int64, bookmark bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.diaries[id]
	if !ok {
		return domain.ErrDiaryNotFound
	}
	d.IsBookmark = bookmark
	d.UpdatedAt = at
	r.s.diaries[id] = d
	return nil
}

func (r memoryDiaries) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.diaries[id]; !ok {
		return domain.ErrDiaryNotFound
	}
	delete(r.s.diaries, id)
	for cid, c := range r.s.comments {
		if c.DiaryID == id {
			delete(r.s.comments, cid)
		}
	}
	for k := range r.s.likes {
		if k[0] == id {
			delete(r.s.likes, k)
		}
	}
	return nil
}

func (r memoryDiaries) Fetch(ctx context.Context, w listing.Window[*domain.Diary]) ([]*domain.Diary, error) {
	return listing.SliceFetcher[*domain.Diary]{
		Items: func() []*domain.Diary {
			r.s.mu.RLock()
			defer r.s.mu.RUnlock()
			return snapshot(r.s.diaries)
		},
		ID:        func(d *domain.Diary) int64 { return d.ID },
		CreatedAt: func(d *domain.Diary) time.Time { return d.CreatedAt },
	}.Fetch(ctx, w)
}

// --- CATEGORIES ---

type memoryCategories struct{ s *MemoryStore }

func (s *MemoryStore) Categories() ports.CategoryRepository { return memoryCategories{s} }

func (r memoryCategories) Save(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.MemberID == c.MemberID && strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrCategoryExists
		}
	}
	c.ID = r.s.nextID()
	r.s.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (r memoryCategories) ListByMember(_ context.Context, memberID int64) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Category{}
	for _, c := range r.s.categories {
		if c.MemberID == memberID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- FRIENDS ---

type memoryFriends struct{ s *MemoryStore }

func (s *MemoryStore) Friends() ports.FriendStore { return memoryFriends{s} }

func (r memoryFriends) IsFriend(_ context.Context, ownerID, friendID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.edges[[2]int64{ownerID, friendID}]
	return ok, nil
}

func (r memoryFriends) FriendIDs(_ context.Context, ownerID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []int64{}
	for k := range r.s.edges {
		if k[0] == ownerID {
			out = append(out, k[1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Link écrit les deux lignes sous le même verrou.
func (r memoryFriends) Link(_ context.Context, a, b int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.link(a, b)
	return nil
}

// link suppose mu tenu en écriture.
func (s *MemoryStore) link(a, b int64) {
	now := time.Now().UTC()
	for _, e := range domain.Pair(a, b, now) {
		k := [2]int64{e.OwnerID, e.FriendID}
		if _, ok := s.edges[k]; !ok {
			s.edges[k] = e.CreatedAt
		}
	}
}

func (r memoryFriends) Unlink(_ context.Context, a, b int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.edges, [2]int64{a, b})
	delete(r.s.edges, [2]int64{b, a})
	return nil
}

// --- FRIEND REQUESTS ---

type memoryRequests struct{ s *MemoryStore }

func (s *MemoryStore) Requests() ports.FriendRequestRepository { return memoryRequests{s} }

func (r memoryRequests) Save(_ context.Context, req *domain.FriendRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.requests {
		if existing.SenderID == req.SenderID && existing.ReceiverID == req.ReceiverID {
			return domain.ErrDuplicateRequest
		}
	}
	req.ID = r.s.nextID()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	stored := *req
	stored.Sender = nil
	r.s.requests[req.ID] = stored
	return nil
}

func (r memoryRequests) FindByID(_ context.Context, id int64) (*domain.FriendRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &req, nil
}

func (r memoryRequests) FindPending(_ context.Context, senderID, receiverID int64) (*domain.FriendRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, req := range r.s.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID {
			req := req
			return &req, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r memoryRequests) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.s.requests, id)
	return nil
}

func (r memoryRequests) DeleteBetween(_ context.Context, a, b int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteBetween(a, b)
	return nil
}

func (s *MemoryStore) deleteBetween(a, b int64) {
	for id, req := range s.requests {
		if (req.SenderID == a && req.ReceiverID == b) || (req.SenderID == b && req.ReceiverID == a) {
			delete(s.requests, id)
		}
	}
}

// --- ACCEPTATION ---

type memoryAcceptor struct{ s *MemoryStore }

func (s *MemoryStore) Acceptor() ports.FriendshipAcceptor { return memoryAcceptor{s} }

// Accept écrit les arêtes et vide les demandes de la paire sous un seul verrou.
func (a memoryAcceptor) Accept(_ context.Context, senderID, receiverID int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.link(senderID, receiverID)
	a.s.deleteBetween(senderID, receiverID)
	return nil
}

func (r memoryRequests) Fetch(ctx context.Context, w listing.Window[*domain.FriendRequest]) ([]*domain.FriendRequest, error) {
	return listing.SliceFetcher[*domain.FriendRequest]{
		Items: func() []*domain.FriendRequest {
			r.s.mu.RLock()
			defer r.s.mu.RUnlock()
			out := snapshot(r.s.requests)
			for _, req := range out {
				if m, ok := r.s.members[req.SenderID]; ok {
					req.Sender = &m
				}
			}
			return out
		},
		ID:        func(req *domain.FriendRequest) int64 { return req.ID },
		CreatedAt: func(req *domain.FriendRequest) time.Time { return req.CreatedAt },
	}.Fetch(ctx, w)
}

// --- COMMENTS ---

type memoryComments struct{ s *MemoryStore }

func (s *MemoryStore) Comments() ports.CommentRepository { return memoryComments{s} }

func (r memoryComments) Save(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.diaries[c.DiaryID]; !ok {
		return domain.ErrDiaryNotFound
	}
	c.ID = r.s.nextID()
	r.s.comments[c.ID] = *c
	return nil
}

func (r memoryComments) Fetch(ctx context.Context, w listing.Window[*domain.Comment]) ([]*domain.Comment, error) {
	return listing.SliceFetcher[*domain.Comment]{
		Items: func() []*domain.Comment {
			r.s.mu.RLock()
			defer r.s.mu.RUnlock()
			return snapshot(r.s.comments)
		},
		ID:        func(c *domain.Comment) int64 { return c.ID },
		CreatedAt: func(c *domain.Comment) time.Time { return c.CreatedAt },
	}.Fetch(ctx, w)
}

// --- LIKES ---

type memoryLikes struct{ s *MemoryStore }

func (s *MemoryStore) Likes() ports.LikeRepository { return memoryLikes{s} }

func (r memoryLikes) Add(_ context.Context, diaryID, memberID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := [2]int64{diaryID, memberID}
	if _, ok := r.s.likes[k]; ok {
		return false, nil
	}
	r.s.likes[k] = time.Now().UTC()
	return true, nil
}

func (r memoryLikes) Remove(_ context.Context, diaryID, memberID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.likes, [2]int64{diaryID, memberID})
	return nil
}

func (r memoryLikes) Count(_ context.Context, diaryID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for k := range r.s.likes {
		if k[0] == diaryID {
			n++
		}
	}
	return n, nil
}

func (r memoryLikes) Has(_ context.Context, diaryID, memberID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.likes[[2]int64{diaryID, memberID}]
	return ok, nil
}

// snapshot copie les lignes : les appelants peuvent muter sans toucher au store.
func snapshot[T any](rows map[int64]T) []*T {
	out := make([]*T, 0, len(rows))
	for _, v := range rows {
		v := v
		out = append(out, &v)
	}
	return out
}
