// Package docstore holds the remote playlist document collection and its
// backends. A document is stored whole: Set overwrites, it never patches.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

var (
	// ErrNotFound is returned when no document exists under the given id.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrPermissionDenied is returned when the backend rejects the caller.
	ErrPermissionDenied = errors.New("docstore: permission denied")
)

// Document is the persisted shape of a playlist, keyed by ID.
type Document struct {
	ID        string       `json:"id" bson:"_id"`
	UserID    string       `json:"userId" bson:"userId"`
	Name      string       `json:"name" bson:"name"`
	Items     []media.Item `json:"items" bson:"items"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

// Collection is a per-id document collection partitioned by owner.
type Collection interface {
	Get(ctx context.Context, id string) (Document, error)
	Set(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	// ListByOwner returns the owner's documents in creation order.
	ListByOwner(ctx context.Context, userID string) ([]Document, error)
}

// Updater is implemented by backends that can read-modify-write a single
// document atomically. fn receives the current document; when it reports no
// change nothing is written.
type Updater interface {
	Update(ctx context.Context, id string, fn func(doc *Document) (changed bool, err error)) error
}

// IsDenied reports whether err is a permission rejection from the backend.
func IsDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (d Document) clone() Document {
	d.Items = media.Clone(d.Items)
	return d
}
