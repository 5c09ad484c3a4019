package filters

import (
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type FriendRequestCriteria struct {
	ReceiverID *int64
	SenderID   *int64
}

func (b *Builder) FriendRequest(c FriendRequestCriteria) listing.Predicate[*domain.FriendRequest] {
	p := listing.True[*domain.FriendRequest]()
	if c.ReceiverID != nil {
		id := *c.ReceiverID
		p = p.And(listing.Where(func(r *domain.FriendRequest) bool { return r.ReceiverID == id },
			"friend_requests.receiver_id = ?", id))
	}
	if c.SenderID != nil {
		id := *c.SenderID
		p = p.And(listing.Where(func(r *domain.FriendRequest) bool { return r.SenderID == id },
			"friend_requests.sender_id = ?", id))
	}
	return p
}

type CommentCriteria struct {
	DiaryID  *int64
	AuthorID *int64
}

func (b *Builder) Comment(c CommentCriteria) listing.Predicate[*domain.Comment] {
	p := listing.True[*domain.Comment]()
	if c.DiaryID != nil {
		id := *c.DiaryID
		p = p.And(listing.Where(func(cm *domain.Comment) bool { return cm.DiaryID == id },
			"comments.diary_id = ?", id))
	}
	if c.AuthorID != nil {
		id := *c.AuthorID
		p = p.And(listing.Where(func(cm *domain.Comment) bool { return cm.MemberID == id },
			"comments.member_id = ?", id))
	}
	return p
}
