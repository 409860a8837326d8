package playlist

import (
	"time"

	"github.com/Khateeb-Urrahman/ListTube/internal/docstore"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// MaxNameLen bounds a playlist name after trimming.
const MaxNameLen = 200

type Playlist struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Items     []media.Item `json:"items"`
	CreatedAt time.Time    `json:"createdAt"`
	UserID    string       `json:"userId"`
}

// Clone returns a copy whose item slice is not shared with p.
func (p Playlist) Clone() Playlist {
	p.Items = media.Clone(p.Items)
	return p
}

// HasItem reports whether an item with id is in the playlist.
func (p Playlist) HasItem(id string) bool {
	return media.IndexOf(p.Items, id) >= 0
}

func (p Playlist) toDocument() docstore.Document {
	return docstore.Document{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Items:     media.Clone(p.Items),
		CreatedAt: p.CreatedAt,
	}
}

func fromDocument(d docstore.Document) Playlist {
	return Playlist{
		ID:        d.ID,
		Name:      d.Name,
		Items:     media.Clone(d.Items),
		CreatedAt: d.CreatedAt,
		UserID:    d.UserID,
	}
}
