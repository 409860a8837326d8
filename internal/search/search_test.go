package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Khateeb-Urrahman/ListTube/internal/logging"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

func TestServiceOfflineURL(t *testing.T) {
	s := NewService(nil, nil, logging.Discard())
	ctx := context.Background()

	t.Run("watch link", func(t *testing.T) {
		items, err := s.Search(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, media.Item{
			ID:          "youtube_dQw4w9WgXcQ",
			Title:       "YouTube Video: dQw4w9WgXcQ",
			Description: "YouTube video with ID dQw4w9WgXcQ.",
			Thumbnail:   "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg",
			Duration:    "00:00",
		}, items[0])
	})

	t.Run("short link", func(t *testing.T) {
		items, err := s.Search(ctx, "https://youtu.be/dQw4w9WgXcQ")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "youtube_dQw4w9WgXcQ", items[0].ID)
	})

	t.Run("link without id", func(t *testing.T) {
		items, err := s.Search(ctx, "https://www.youtube.com/feed/trending")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("short id", func(t *testing.T) {
		items, err := s.Search(ctx, "https://www.youtube.com/watch?v=abc")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestServiceCatalog(t *testing.T) {
	s := NewService(nil, nil, logging.Discard())
	ctx := context.Background()

	t.Run("blank", func(t *testing.T) {
		items, err := s.Search(ctx, "   ")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("title match ignores case", func(t *testing.T) {
		items, err := s.Search(ctx, "tailwind")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Tailwind CSS Deep Dive", items[0].Title)
	})

	t.Run("description match", func(t *testing.T) {
		items, err := s.Search(ctx, "zustand")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "6", items[0].ID)
	})

	t.Run("several matches keep catalog order", func(t *testing.T) {
		items, err := s.Search(ctx, "react")
		require.NoError(t, err)
		var ids []string
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		assert.Equal(t, []string{"5", "6"}, ids)
	})

	t.Run("no match", func(t *testing.T) {
		items, err := s.Search(ctx, "kubernetes")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestServiceWithVideoSource(t *testing.T) {
	ctx := context.Background()

	t.Run("url resolves through provider", func(t *testing.T) {
		src := new(MockVideoSource)
		item := media.Item{ID: "youtube_dQw4w9WgXcQ", Title: "Real title", Duration: "03:33"}
		src.On("Video", mock.Anything, "dQw4w9WgXcQ").Return(item, true, nil)

		s := NewService(nil, src, logging.Discard())
		items, err := s.Search(ctx, "https://www.youtube.com/embed/dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, []media.Item{item}, items)
		src.AssertExpectations(t)
	})

	t.Run("unknown video", func(t *testing.T) {
		src := new(MockVideoSource)
		src.On("Video", mock.Anything, "dQw4w9WgXcQ").Return(media.Item{}, false, nil)

		s := NewService(nil, src, logging.Discard())
		items, err := s.Search(ctx, "https://youtu.be/dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, []media.Item{OfflineVideo("dQw4w9WgXcQ")}, items)
	})

	t.Run("provider error on link falls back offline", func(t *testing.T) {
		src := new(MockVideoSource)
		src.On("Video", mock.Anything, "dQw4w9WgXcQ").Return(media.Item{}, false, errors.New("quota exceeded"))

		s := NewService(nil, src, logging.Discard())
		items, err := s.Search(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, []media.Item{OfflineVideo("dQw4w9WgXcQ")}, items)
		src.AssertExpectations(t)
	})

	t.Run("cancelled link lookup returns the context error", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		src := new(MockVideoSource)
		src.On("Video", mock.Anything, "dQw4w9WgXcQ").Return(media.Item{}, false, context.Canceled)

		s := NewService(nil, src, logging.Discard())
		_, err := s.Search(cctx, "https://youtu.be/dQw4w9WgXcQ")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("free text goes to provider", func(t *testing.T) {
		src := new(MockVideoSource)
		hits := []media.Item{{ID: "youtube_aaaaaaaaaaa"}}
		src.On("SearchVideos", mock.Anything, "lofi", DefaultLimit).Return(hits, nil)

		s := NewService(nil, src, logging.Discard())
		items, err := s.Search(ctx, "  lofi ")
		require.NoError(t, err)
		assert.Equal(t, hits, items)
		src.AssertExpectations(t)
	})

	t.Run("provider error", func(t *testing.T) {
		src := new(MockVideoSource)
		src.On("SearchVideos", mock.Anything, "lofi", DefaultLimit).Return(nil, errors.New("quota exceeded"))

		s := NewService(nil, src, logging.Discard())
		_, err := s.Search(ctx, "lofi")
		assert.ErrorContains(t, err, "quota exceeded")
	})
}
