package media

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts a YouTube contentDetails duration (PT#H#M#S)
// to seconds. Unsupported shapes yield 0.
func ParseISO8601Duration(d string) int {
	m := isoDurationPattern.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	var parts [3]int
	for i := range parts {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		parts[i] = v
	}
	return parts[0]*3600 + parts[1]*60 + parts[2]
}

// FormatDuration renders seconds as "mm:ss", or "h:mm:ss" past an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
