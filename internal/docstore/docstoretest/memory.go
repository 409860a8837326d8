// Package docstoretest provides an in-memory collection with fault injection
// and call counting for tests.
package docstoretest

import (
	"context"
	"sync"

	"github.com/Khateeb-Urrahman/ListTube/internal/docstore"
)

// Op names a collection operation.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpList   Op = "list"
	OpUpdate Op = "update"
)

// Memory wraps docstore.Memory and counts every operation.
type Memory struct {
	inner *docstore.Memory

	// Fault, when set, is consulted before every operation; a non-nil error
	// is returned instead of touching the data.
	Fault func(op Op, id string) error

	mu    sync.Mutex
	calls map[Op]int
}

var (
	_ docstore.Collection = (*Memory)(nil)
	_ docstore.Updater    = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		inner: docstore.NewMemory(),
		calls: make(map[Op]int),
	}
}

// Calls returns how many times op was invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *Memory) begin(op Op, id string) error {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
	if m.Fault != nil {
		return m.Fault(op, id)
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (docstore.Document, error) {
	if err := m.begin(OpGet, id); err != nil {
		return docstore.Document{}, err
	}
	return m.inner.Get(ctx, id)
}

func (m *Memory) Set(ctx context.Context, doc docstore.Document) error {
	if err := m.begin(OpSet, doc.ID); err != nil {
		return err
	}
	return m.inner.Set(ctx, doc)
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := m.begin(OpDelete, id); err != nil {
		return err
	}
	return m.inner.Delete(ctx, id)
}

func (m *Memory) ListByOwner(ctx context.Context, userID string) ([]docstore.Document, error) {
	if err := m.begin(OpList, userID); err != nil {
		return nil, err
	}
	return m.inner.ListByOwner(ctx, userID)
}

func (m *Memory) Update(ctx context.Context, id string, fn func(doc *docstore.Document) (bool, error)) error {
	if err := m.begin(OpUpdate, id); err != nil {
		return err
	}
	return m.inner.Update(ctx, id, fn)
}
