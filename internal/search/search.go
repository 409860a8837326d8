// Package search resolves user queries to media items: YouTube links become a
// single item, free text is matched against the YouTube Data API when a key
// is configured and against the built-in catalog otherwise.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// DefaultLimit caps free-text results fetched from a remote provider.
const DefaultLimit = 10

// Lookup is the media lookup contract consumed by the session and the HTTP
// handler.
type Lookup interface {
	Search(ctx context.Context, query string) ([]media.Item, error)
}

// VideoSource is a remote provider of video metadata.
type VideoSource interface {
	// Video returns the item for a video id; ok is false when the provider
	// does not know the id.
	Video(ctx context.Context, videoID string) (item media.Item, ok bool, err error)
	SearchVideos(ctx context.Context, query string, limit int) ([]media.Item, error)
}

type Service struct {
	catalog *Catalog
	videos  VideoSource
	logger  *slog.Logger
}

// NewService builds a lookup over the catalog. videos may be nil, in which
// case YouTube links are resolved offline and free text only searches the
// catalog.
func NewService(catalog *Catalog, videos VideoSource, logger *slog.Logger) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, videos: videos, logger: logger}
}

func (s *Service) Search(ctx context.Context, query string) ([]media.Item, error) {
	if media.IsYouTubeURL(query) {
		return s.searchURL(ctx, query)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []media.Item{}, nil
	}
	if s.videos != nil {
		items, err := s.videos.SearchVideos(ctx, query, DefaultLimit)
		if err != nil {
			return nil, fmt.Errorf("search videos: %w", err)
		}
		return items, nil
	}
	return s.catalog.Filter(query), nil
}

func (s *Service) searchURL(ctx context.Context, rawURL string) ([]media.Item, error) {
	videoID, ok := media.ExtractYouTubeID(rawURL)
	if !ok {
		s.logger.Debug("no video id in youtube link", "query", rawURL)
		return []media.Item{}, nil
	}
	if s.videos == nil {
		return []media.Item{OfflineVideo(videoID)}, nil
	}

	// A link with a valid id always yields exactly one item.
	item, found, err := s.videos.Video(ctx, videoID)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("fetch video failed, using offline item", "video", videoID, "error", err)
		return []media.Item{OfflineVideo(videoID)}, nil
	case !found:
		s.logger.Warn("video unknown to provider, using offline item", "video", videoID)
		return []media.Item{OfflineVideo(videoID)}, nil
	}
	return []media.Item{item}, nil
}

// OfflineVideo synthesizes an item for a video id without contacting
// YouTube.
func OfflineVideo(videoID string) media.Item {
	return media.Item{
		ID:          media.YouTubeItemID(videoID),
		Title:       "YouTube Video: " + videoID,
		Description: fmt.Sprintf("YouTube video with ID %s.", videoID),
		Thumbnail:   media.YouTubeThumbnail(videoID),
		Duration:    "00:00",
	}
}
