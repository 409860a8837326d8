package session

import (
	"context"
	"strings"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// Search replaces the result list with the lookup's answer for query. A
// blank query clears the results without a lookup. When query is a YouTube
// link and something was found, the first result opens in the preview.
func (s *Session) Search(ctx context.Context, query string) ([]media.Item, error) {
	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	if strings.TrimSpace(query) == "" {
		s.results = []media.Item{}
		s.mu.Unlock()
		return []media.Item{}, nil
	}
	s.mu.Unlock()

	items, err := s.lookup.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		// A newer search owns the result list.
		return media.Clone(items), err
	}
	if err != nil {
		s.logger.Warn("search media", "error", err)
		s.results = []media.Item{}
		s.message = MsgSearchFailed
		return nil, err
	}

	s.results = media.Clone(items)
	if media.IsYouTubeURL(query) && len(items) > 0 {
		preview := items[0]
		s.preview = &preview
	}
	return media.Clone(items), nil
}

// Preview opens item in the preview.
func (s *Session) Preview(item media.Item) {
	s.mu.Lock()
	s.preview = &item
	s.mu.Unlock()
}

func (s *Session) ClosePreview() {
	s.mu.Lock()
	s.preview = nil
	s.mu.Unlock()
}
