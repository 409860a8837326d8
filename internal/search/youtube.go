package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// YouTube looks videos up through the YouTube Data API v3.
type YouTube struct {
	svc     *youtube.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewYouTube creates a Data API client authenticated with apiKey. endpoint
// overrides the API base URL when non-empty.
func NewYouTube(ctx context.Context, apiKey, endpoint string, timeout time.Duration, logger *slog.Logger) (*YouTube, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTube{svc: svc, timeout: timeout, logger: logger}, nil
}

func (y *YouTube) Video(ctx context.Context, videoID string) (media.Item, bool, error) {
	items, err := y.fetchVideos(ctx, []string{videoID})
	if err != nil {
		return media.Item{}, false, err
	}
	it, ok := items[videoID]
	return it, ok, nil
}

// SearchVideos runs a free-text search and then fetches snippet and
// duration for the hits. A failed detail fetch degrades to the search
// snippets without durations.
func (y *YouTube) SearchVideos(ctx context.Context, query string, limit int) ([]media.Item, error) {
	if limit <= 0 || limit > 50 {
		limit = DefaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.svc.Search.
		List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]media.Item, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, hit := range resp.Items {
		if hit.Id == nil || hit.Id.VideoId == "" {
			continue
		}
		id := hit.Id.VideoId
		it := media.Item{
			ID:        media.YouTubeItemID(id),
			Thumbnail: media.YouTubeThumbnail(id),
		}
		if hit.Snippet != nil {
			it.Title = hit.Snippet.Title
			it.Description = hit.Snippet.Description
			if thumb := bestThumbnail(hit.Snippet.Thumbnails); thumb != "" {
				it.Thumbnail = thumb
			}
		}
		out = append(out, it)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return out, nil
	}

	details, err := y.fetchVideos(ctx, ids)
	if err != nil {
		y.logger.Warn("youtube fetch video details", "error", err)
		return out, nil
	}
	for i, id := range ids {
		if d, ok := details[id]; ok {
			out[i].Duration = d.Duration
		}
	}
	return out, nil
}

func (y *YouTube) fetchVideos(ctx context.Context, ids []string) (map[string]media.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.svc.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make(map[string]media.Item, len(resp.Items))
	for _, v := range resp.Items {
		if v.Snippet == nil {
			continue
		}
		it := media.Item{
			ID:          media.YouTubeItemID(v.Id),
			Title:       v.Snippet.Title,
			Description: v.Snippet.Description,
			Thumbnail:   bestThumbnail(v.Snippet.Thumbnails),
		}
		if it.Thumbnail == "" {
			it.Thumbnail = media.YouTubeThumbnail(v.Id)
		}
		if v.ContentDetails != nil {
			it.Duration = media.FormatDuration(media.ParseISO8601Duration(v.ContentDetails.Duration))
		}
		out[v.Id] = it
	}
	return out, nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Medium, t.High, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
