package search

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

type MockVideoSource struct {
	mock.Mock
}

func (m *MockVideoSource) Video(ctx context.Context, videoID string) (media.Item, bool, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(media.Item), args.Bool(1), args.Error(2)
}

func (m *MockVideoSource) SearchVideos(ctx context.Context, query string, limit int) ([]media.Item, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]media.Item), args.Error(1)
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
