package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/internal/core/services"
	"github.com/jupiterclapton/journal/pkg/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func firstPage(ep ports.Endpoint, size int) listing.PageRequest {
	return listing.PageRequest{Cursor: listing.Start(ep.Strategy), Size: size}
}

func TestFriendService_RequestLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "bob", "cid")
	pub := new(MockPublisher)
	svc := services.NewFriendService(store.Members(), store.Requests(), store.Friends(), store.Acceptor(), pub, builder, nil)

	pub.On("Publish", mock.Anything, eventOf(domain.EventFriendRequested)).Return(nil).Once()
	pub.On("Publish", mock.Anything, eventOf(domain.EventFriendAccepted)).Return(nil).Once()

	req, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.NotZero(t, req.ID)

	t.Run("Should refuse a second request in either direction", func(t *testing.T) {
		_, err := svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		_, err = svc.SendRequest(ctx, 2, 1)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})

	t.Run("Should refuse self requests and unknown members", func(t *testing.T) {
		_, err := svc.SendRequest(ctx, 1, 1)
		assert.ErrorIs(t, err, domain.ErrSelfRequest)
		_, err = svc.SendRequest(ctx, 1, 42)
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	})

	t.Run("Should only let the receiver accept", func(t *testing.T) {
		assert.ErrorIs(t, svc.AcceptRequest(ctx, 1, req.ID), domain.ErrRequestNotFound)
		assert.ErrorIs(t, svc.AcceptRequest(ctx, 3, req.ID), domain.ErrRequestNotFound)
	})

	require.NoError(t, svc.AcceptRequest(ctx, 2, req.ID))

	t.Run("Should store the friendship in both directions", func(t *testing.T) {
		ab, err := store.Friends().IsFriend(ctx, 1, 2)
		require.NoError(t, err)
		ba, err := store.Friends().IsFriend(ctx, 2, 1)
		require.NoError(t, err)
		assert.True(t, ab)
		assert.True(t, ba)
	})

	t.Run("Should consume the request", func(t *testing.T) {
		inbox, err := svc.ListRequests(ctx, 2, firstPage(ports.RequestInbox, 10))
		require.NoError(t, err)
		assert.Empty(t, inbox.Items)
		_, err = svc.SendRequest(ctx, 2, 1)
		assert.ErrorIs(t, err, domain.ErrAlreadyFriends)
	})

	t.Run("Should remove both directions on unfriend", func(t *testing.T) {
		require.NoError(t, svc.Unfriend(ctx, 1, 2))
		for _, pair := range [][2]int64{{1, 2}, {2, 1}} {
			ok, err := store.Friends().IsFriend(ctx, pair[0], pair[1])
			require.NoError(t, err)
			assert.False(t, ok)
		}
		assert.ErrorIs(t, svc.Unfriend(ctx, 1, 2), domain.ErrNotFriends)
	})

	pub.AssertExpectations(t)
}

func TestFriendService_AcceptRollback(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "bob")
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, eventOf(domain.EventFriendRequested)).Return(nil).Once()
	acceptor := new(MockAcceptor)
	acceptor.On("Accept", mock.Anything, int64(1), int64(2)).Return(errors.New("tx aborted")).Once()
	svc := services.NewFriendService(store.Members(), store.Requests(), store.Friends(), acceptor, pub, builder, nil)

	req, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	t.Run("Should leave no partial state when the accept transaction fails", func(t *testing.T) {
		assert.Error(t, svc.AcceptRequest(ctx, 2, req.ID))

		ok, err := store.Friends().IsFriend(ctx, 1, 2)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = store.Friends().IsFriend(ctx, 2, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		inbox, err := svc.ListRequests(ctx, 2, firstPage(ports.RequestInbox, 10))
		require.NoError(t, err)
		require.Len(t, inbox.Items, 1)
		assert.Equal(t, req.ID, inbox.Items[0].ID)
	})

	acceptor.AssertExpectations(t)
	pub.AssertExpectations(t)
	pub.AssertNotCalled(t, "Publish", mock.Anything, eventOf(domain.EventFriendAccepted))
}

func TestFriendService_RejectRequest(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "bob", "cid")
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc := services.NewFriendService(store.Members(), store.Requests(), store.Friends(), nil, pub, builder, nil)

	req, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RejectRequest(ctx, 3, req.ID), domain.ErrRequestNotFound)
	// L'émetteur peut annuler sa propre demande
	require.NoError(t, svc.RejectRequest(ctx, 1, req.ID))

	ok, err := store.Friends().IsFriend(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.SendRequest(ctx, 2, 1)
	assert.NoError(t, err)
}

func TestFriendService_ListFriends(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "bob", "cid", "dan", "eve")
	svc := services.NewFriendService(store.Members(), store.Requests(), store.Friends(), nil, nil, builder, nil)
	for _, id := range []int64{5, 2, 4} {
		require.NoError(t, store.Friends().Link(ctx, 1, id))
	}

	t.Run("Should walk friends by ascending id", func(t *testing.T) {
		p1, err := svc.ListFriends(ctx, 1, 1, filters.MemberCriteria{}, firstPage(ports.FriendList, 2))
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 4}, memberIDs(p1.Items))
		require.NotNil(t, p1.Next)

		p2, err := svc.ListFriends(ctx, 1, 1, filters.MemberCriteria{}, listing.PageRequest{Cursor: *p1.Next, Size: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, memberIDs(p2.Items))
		assert.Nil(t, p2.Next)
	})

	t.Run("Should return an empty page for a member without friends", func(t *testing.T) {
		page, err := svc.ListFriends(ctx, 1, 3, filters.MemberCriteria{}, firstPage(ports.FriendList, 10))
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.Next)
	})

	t.Run("Should apply the nickname filter inside the friend set", func(t *testing.T) {
		nick := "E"
		page, err := svc.ListFriends(ctx, 1, 1, filters.MemberCriteria{Nickname: &nick}, firstPage(ports.FriendList, 10))
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, memberIDs(page.Items))
	})

	t.Run("Should fail for an unknown owner", func(t *testing.T) {
		_, err := svc.ListFriends(ctx, 1, 99, filters.MemberCriteria{}, firstPage(ports.FriendList, 10))
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	})
}

func TestMemberService_Search(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "ann", "anna", "bob")
	svc := services.NewMemberService(store.Members(), builder, nil)

	page, err := svc.SearchMembers(ctx, 1, filters.MemberCriteria{}, firstPage(ports.MemberSearch, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, memberIDs(page.Items))

	nick := "AN"
	page, err = svc.SearchMembers(ctx, 3, filters.MemberCriteria{Nickname: &nick}, firstPage(ports.MemberSearch, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, memberIDs(page.Items))
}

func memberIDs(items []*domain.Member) []int64 {
	out := make([]int64, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return out
}
