package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
)

type notificationService struct {
	members ports.MemberRepository
	pusher  ports.Pusher
}

func NewNotificationService(members ports.MemberRepository, pusher ports.Pusher) ports.NotificationService {
	return &notificationService{members: members, pusher: pusher}
}

// Handle ignore les auto-notifications et les types inconnus.
func (s *notificationService) Handle(ctx context.Context, evt domain.Event) error {
	if evt.ActorID == evt.RecipientID {
		return nil
	}

	actor := "Someone"
	m, err := s.members.FindByID(ctx, evt.ActorID)
	switch {
	case err == nil:
		actor = m.Nickname
	case errors.Is(err, domain.ErrMemberNotFound):
		// Compte supprimé entre-temps : on notifie quand même
	default:
		return err
	}

	n, ok := render(evt, actor)
	if !ok {
		slog.WarnContext(ctx, "unknown event type", "type", evt.Type, "event_id", evt.ID)
		return nil
	}
	if err := s.pusher.Push(ctx, n); err != nil {
		return fmt.Errorf("push %s: %w", evt.Type, err)
	}
	return nil
}

func render(evt domain.Event, actor string) (domain.Notification, bool) {
	n := domain.Notification{
		RecipientID: evt.RecipientID,
		Data: map[string]string{
			"type":     string(evt.Type),
			"actor_id": strconv.FormatInt(evt.ActorID, 10),
		},
	}
	switch evt.Type {
	case domain.EventFriendRequested:
		n.Title = "New friend request"
		n.Body = actor + " wants to be your friend"
		n.Data["request_id"] = strconv.FormatInt(evt.RequestID, 10)
	case domain.EventFriendAccepted:
		n.Title = "Friend request accepted"
		n.Body = actor + " accepted your friend request"
	case domain.EventCommentCreated:
		n.Title = "New comment"
		n.Body = actor + " commented on your diary"
		n.Data["diary_id"] = strconv.FormatInt(evt.DiaryID, 10)
	case domain.EventDiaryLiked:
		n.Title = "New like"
		n.Body = actor + " liked your diary"
		n.Data["diary_id"] = strconv.FormatInt(evt.DiaryID, 10)
	default:
		return domain.Notification{}, false
	}
	return n, true
}
