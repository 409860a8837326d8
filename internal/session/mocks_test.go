package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]playlist.Playlist, playlist.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).([]playlist.Playlist), args.Get(1).(playlist.Result), args.Error(2)
}

func (m *MockStore) Create(ctx context.Context, name string) (playlist.Playlist, playlist.Result, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(playlist.Playlist), args.Get(1).(playlist.Result), args.Error(2)
}

func (m *MockStore) Delete(ctx context.Context, id string) (playlist.Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(playlist.Result), args.Error(1)
}

func (m *MockStore) AddItem(ctx context.Context, id string, item media.Item) (playlist.Result, error) {
	args := m.Called(ctx, id, item)
	return args.Get(0).(playlist.Result), args.Error(1)
}

func (m *MockStore) RemoveItem(ctx context.Context, id, itemID string) (playlist.Result, error) {
	args := m.Called(ctx, id, itemID)
	return args.Get(0).(playlist.Result), args.Error(1)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Search(ctx context.Context, query string) ([]media.Item, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]media.Item), args.Error(1)
}
