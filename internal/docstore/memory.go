package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process collection. It backs tests and the "memory" store
// driver.
type Memory struct {
	mu   sync.Mutex
	docs map[string]Document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

func (m *Memory) Get(ctx context.Context, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.clone(), nil
}

func (m *Memory) Set(ctx context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *Memory) ListByOwner(ctx context.Context, userID string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Document{}
	for _, doc := range m.docs {
		if doc.UserID == userID {
			out = append(out, doc.clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(doc *Document) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc = doc.clone()
	changed, err := fn(&doc)
	if err != nil || !changed {
		return err
	}
	doc.ID = id
	m.docs[id] = doc
	return nil
}

func sortByCreation(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
