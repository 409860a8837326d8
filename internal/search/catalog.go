package search

import (
	"strings"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// Catalog is a fixed, in-process set of media items.
type Catalog struct {
	items []media.Item
}

func NewCatalog(items []media.Item) *Catalog {
	return &Catalog{items: media.Clone(items)}
}

// DefaultCatalog returns the demo catalog served when no provider is
// configured.
func DefaultCatalog() *Catalog {
	return NewCatalog([]media.Item{
		{
			ID:          "1",
			Title:       "Next.js 16 Crash Course",
			Description: "Learn the latest features of Next.js 16 including the App Router, Server Components, and more.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "25:42",
		},
		{
			ID:          "2",
			Title:       "Tailwind CSS Deep Dive",
			Description: "Master Tailwind CSS with advanced techniques and best practices for modern web development.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "32:15",
		},
		{
			ID:          "3",
			Title:       "TypeScript Advanced Patterns",
			Description: "Explore advanced TypeScript patterns and techniques for building robust applications.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "41:30",
		},
		{
			ID:          "4",
			Title:       "Building Responsive UIs with shadcn/ui",
			Description: "Learn how to create beautiful, responsive user interfaces using the shadcn/ui component library.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "18:22",
		},
		{
			ID:          "5",
			Title:       "React Performance Optimization",
			Description: "Discover techniques to optimize React application performance and reduce bundle sizes.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "37:45",
		},
		{
			ID:          "6",
			Title:       "State Management in React",
			Description: "Comparing different state management solutions for React applications including Context API, Redux, and Zustand.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "29:17",
		},
		{
			ID:          "7",
			Title:       "CSS Variables and Custom Properties",
			Description: "Learn how to use CSS custom properties to create maintainable and scalable stylesheets.",
			Thumbnail:   media.PlaceholderThumbnail,
			Duration:    "22:05",
		},
	})
}

// Filter returns the items whose title or description contains query,
// ignoring case, in catalog order.
func (c *Catalog) Filter(query string) []media.Item {
	q := strings.ToLower(query)
	out := []media.Item{}
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}
