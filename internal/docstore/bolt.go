package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

var bucketPlaylists = []byte("playlists")

// Bolt is an embedded single-file collection, used by the CLI when no remote
// store is configured.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database at path and ensures the playlists
// bucket exists.
func OpenBolt(path string, timeout time.Duration) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPlaylists)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *Bolt) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var doc Document
	err := b.db.View(func(tx *bolt.Tx) error {
		return readDoc(tx, id, &doc)
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (b *Bolt) Set(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return writeDoc(tx, doc)
	})
}

func (b *Bolt) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlaylists).Delete([]byte(id))
	})
}

func (b *Bolt) ListByOwner(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := []Document{}
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlaylists).ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decode playlist %s: %w", k, err)
			}
			if doc.UserID == userID {
				docs = append(docs, doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(docs)
	return docs, nil
}

// Update runs fn inside a single bolt write transaction. Bolt allows one
// writer at a time, so the read and the write cannot interleave with another
// update.
func (b *Bolt) Update(ctx context.Context, id string, fn func(doc *Document) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		var doc Document
		if err := readDoc(tx, id, &doc); err != nil {
			return err
		}
		changed, err := fn(&doc)
		if err != nil || !changed {
			return err
		}
		return writeDoc(tx, doc)
	})
}

func readDoc(tx *bolt.Tx, id string, dest *Document) error {
	v := tx.Bucket(bucketPlaylists).Get([]byte(id))
	if v == nil {
		return fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}
	if err := json.Unmarshal(v, dest); err != nil {
		return fmt.Errorf("decode playlist %s: %w", id, err)
	}
	return nil
}

func writeDoc(tx *bolt.Tx, doc Document) error {
	if doc.Items == nil {
		doc.Items = []media.Item{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode playlist %s: %w", doc.ID, err)
	}
	return tx.Bucket(bucketPlaylists).Put([]byte(doc.ID), data)
}
