package media

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// YouTubePrefix marks item ids that refer to a YouTube video.
	YouTubePrefix = "youtube_"

	youTubeIDLength = 11
	thumbnailTmpl   = "https://img.youtube.com/vi/%s/mqdefault.jpg"
	embedTmpl       = "https://www.youtube.com/embed/%s?autoplay=1&rel=0&modestbranding=1"
)

var youTubeURLPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// IsYouTubeURL reports whether the query looks like a YouTube link rather
// than free text.
func IsYouTubeURL(query string) bool {
	return strings.Contains(query, "youtube.com") || strings.Contains(query, "youtu.be")
}

// ExtractYouTubeID pulls the 11 character video id out of the common YouTube
// URL shapes (watch, short link, embed, v/, u/).
func ExtractYouTubeID(rawURL string) (string, bool) {
	m := youTubeURLPattern.FindStringSubmatch(rawURL)
	if len(m) < 3 || len(m[2]) != youTubeIDLength {
		return "", false
	}
	return m[2], true
}

// YouTubeItemID returns the playlist item id used for a YouTube video.
func YouTubeItemID(videoID string) string {
	return YouTubePrefix + videoID
}

// YouTubeThumbnail returns the medium quality thumbnail for a video id.
func YouTubeThumbnail(videoID string) string {
	return fmt.Sprintf(thumbnailTmpl, videoID)
}

// VideoID returns the external YouTube id of an item, if it has one.
func (it Item) VideoID() (string, bool) {
	if !strings.HasPrefix(it.ID, YouTubePrefix) {
		return "", false
	}
	id := strings.TrimPrefix(it.ID, YouTubePrefix)
	return id, id != ""
}

// EmbedURL returns the embeddable player URL for an item. Items that are not
// YouTube videos cannot be played.
func EmbedURL(it Item) (string, bool) {
	id, ok := it.VideoID()
	if !ok {
		return "", false
	}
	return fmt.Sprintf(embedTmpl, id), true
}
