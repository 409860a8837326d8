package media

// PlaceholderThumbnail is shown when an item has no resolvable thumbnail.
const PlaceholderThumbnail = "/placeholder.jpg"

// Item is a search result or playlist entry. Items are values: collections
// copy them in and out and nothing mutates one in place.
type Item struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Thumbnail   string `json:"thumbnail" bson:"thumbnail"`
	Duration    string `json:"duration,omitempty" bson:"duration,omitempty"` // display only
}

// ThumbnailOrPlaceholder returns the thumbnail URI, or the placeholder image
// when the item carries none.
func (it Item) ThumbnailOrPlaceholder() string {
	if it.Thumbnail == "" {
		return PlaceholderThumbnail
	}
	return it.Thumbnail
}

// IndexOf returns the position of the first item with the given id, or -1.
func IndexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of items with every element matching id removed.
func Without(items []Item, id string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Clone returns a copy of items that shares no backing array with the input.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
