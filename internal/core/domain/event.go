package domain

import "time"

type EventType string

const (
	EventFriendRequested EventType = "friend.requested"
	EventFriendAccepted  EventType = "friend.accepted"
	EventCommentCreated  EventType = "comment.created"
	EventDiaryLiked      EventType = "diary.liked"
)

// Event est publié après une écriture réussie ; il alimente les notifications push.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ActorID     int64     `json:"actor_id"`
	RecipientID int64     `json:"recipient_id"`
	DiaryID     int64     `json:"diary_id,omitempty"`
	RequestID   int64     `json:"request_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notification est le message final envoyé au destinataire.
type Notification struct {
	RecipientID int64
	Title       string
	Body        string
	Data        map[string]string
}
