package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotificationService_Handle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "bob")

	t.Run("Should render the actor nickname", func(t *testing.T) {
		pusher := new(MockPusher)
		pusher.On("Push", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
			return n.RecipientID == 2 && n.Body == "ann commented on your diary" && n.Data["diary_id"] == "7"
		})).Return(nil).Once()

		svc := services.NewNotificationService(store.Members(), pusher)
		err := svc.Handle(ctx, domain.Event{Type: domain.EventCommentCreated, ActorID: 1, RecipientID: 2, DiaryID: 7})
		assert.NoError(t, err)
		pusher.AssertExpectations(t)
	})

	t.Run("Should fall back when the actor is gone", func(t *testing.T) {
		pusher := new(MockPusher)
		pusher.On("Push", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
			return n.Body == "Someone wants to be your friend"
		})).Return(nil).Once()

		svc := services.NewNotificationService(store.Members(), pusher)
		assert.NoError(t, svc.Handle(ctx, domain.Event{Type: domain.EventFriendRequested, ActorID: 99, RecipientID: 2}))
		pusher.AssertExpectations(t)
	})

	t.Run("Should skip self events and unknown types", func(t *testing.T) {
		pusher := new(MockPusher)
		svc := services.NewNotificationService(store.Members(), pusher)

		assert.NoError(t, svc.Handle(ctx, domain.Event{Type: domain.EventDiaryLiked, ActorID: 1, RecipientID: 1}))
		assert.NoError(t, svc.Handle(ctx, domain.Event{Type: "diary.archived", ActorID: 1, RecipientID: 2}))
		pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	})

	t.Run("Should report push failures for redelivery", func(t *testing.T) {
		boom := errors.New("apns down")
		pusher := new(MockPusher)
		pusher.On("Push", mock.Anything, mock.Anything).Return(boom)

		svc := services.NewNotificationService(store.Members(), pusher)
		err := svc.Handle(ctx, domain.Event{Type: domain.EventFriendAccepted, ActorID: 1, RecipientID: 2})
		assert.ErrorIs(t, err, boom)
	})
}
