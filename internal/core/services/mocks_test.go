package services_test

import (
	"context"
	"testing"

	"github.com/jupiterclapton/journal/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt domain.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type MockAcceptor struct {
	mock.Mock
}

func (m *MockAcceptor) Accept(ctx context.Context, senderID, receiverID int64) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// eventOf filtre les appels Publish sur le type d'événement.
func eventOf(t domain.EventType) any {
	return mock.MatchedBy(func(e domain.Event) bool { return e.Type == t })
}

func newStore(t *testing.T, nicknames ...string) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	for i, nick := range nicknames {
		require.NoError(t, store.Members().Save(context.Background(), &domain.Member{
			ID:       int64(i + 1),
			Nickname: nick,
			Email:    nick + "@example.com",
		}))
	}
	return store
}

var builder = filters.NewBuilder(filters.CaseInsensitive)
