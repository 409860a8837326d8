// Package playlist is the authoritative playlist layer. Every operation runs
// as the identity reported by the Store's source and refuses to touch
// playlists owned by anyone else.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Khateeb-Urrahman/ListTube/internal/docstore"
	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

var (
	ErrNotAuthenticated = errors.New("playlist: user not authenticated")
	ErrInvalidName      = fmt.Errorf("playlist: name must be between 1 and %d characters", MaxNameLen)
)

type Store struct {
	coll   docstore.Collection
	ids    identity.Source
	logger *slog.Logger
	locks  *keyedMutex

	newID func() string
	now   func() time.Time
}

func NewStore(coll docstore.Collection, ids identity.Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		coll:   coll,
		ids:    ids,
		logger: logger,
		locks:  newKeyedMutex(),
		newID:  newPlaylistID,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// As returns a Store acting as src. The views share the collection and the
// per-playlist locks.
func (s *Store) As(src identity.Source) *Store {
	view := *s
	view.ids = src
	return &view
}

// newPlaylistID returns a time-ordered UUIDv7, falling back to a random v4
// if the clock source fails.
func newPlaylistID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (s *Store) userID() string {
	if s.ids == nil {
		return ""
	}
	if id := s.ids.Current(); id != nil {
		return id.UID
	}
	return ""
}

// ValidateName trims name and checks its length.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// List returns the caller's playlists in creation order. It never fails
// loudly: without a user, on denial or on remote failure it returns an empty
// list and says why in the Result.
func (s *Store) List(ctx context.Context) ([]Playlist, Result, error) {
	uid := s.userID()
	if uid == "" {
		s.logger.Warn("list playlists: no user logged in")
		return []Playlist{}, skipped(ReasonUnauthenticated), nil
	}

	docs, err := s.coll.ListByOwner(ctx, uid)
	if err != nil {
		res, err := s.classify(ctx, "list playlists", "", err)
		return []Playlist{}, res, err
	}

	out := make([]Playlist, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, applied(), nil
}

// Create builds a playlist for the caller and saves it. The playlist is
// returned even when the save was denied; the Result tells the caller
// whether it exists remotely.
func (s *Store) Create(ctx context.Context, name string) (Playlist, Result, error) {
	uid := s.userID()
	if uid == "" {
		return Playlist{}, Result{}, ErrNotAuthenticated
	}
	name, err := ValidateName(name)
	if err != nil {
		return Playlist{}, Result{}, err
	}

	p := Playlist{
		ID:        s.newID(),
		Name:      name,
		Items:     []media.Item{},
		CreatedAt: s.now(),
		UserID:    uid,
	}

	res := s.save(ctx, p)
	if res.Outcome == Failed {
		if err := ctx.Err(); err != nil {
			return p, res, err
		}
	}
	if res.Outcome == Applied {
		s.logger.Info("playlist created", "playlist", p.ID, "user", uid)
	}
	return p, res, nil
}

// save overwrites the whole document for p. Permission failures are logged
// and reported as Denied rather than returned.
func (s *Store) save(ctx context.Context, p Playlist) Result {
	if err := s.coll.Set(ctx, p.toDocument()); err != nil {
		res, _ := s.classify(ctx, "save playlist", p.ID, err)
		return res
	}
	return applied()
}

func (s *Store) Delete(ctx context.Context, id string) (Result, error) {
	uid := s.userID()
	if uid == "" {
		return Result{}, ErrNotAuthenticated
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.coll.Get(ctx, id)
	if err != nil {
		return s.classify(ctx, "delete playlist", id, err)
	}
	if doc.UserID != uid {
		return s.notOwned("delete playlist", id), nil
	}

	if err := s.coll.Delete(ctx, id); err != nil {
		return s.classify(ctx, "delete playlist", id, err)
	}
	s.logger.Info("playlist deleted", "playlist", id, "user", uid)
	return applied(), nil
}

// AddItem appends item unless an item with the same id is already present.
func (s *Store) AddItem(ctx context.Context, id string, item media.Item) (Result, error) {
	uid := s.userID()
	if uid == "" {
		return Result{}, ErrNotAuthenticated
	}

	return s.mutate(ctx, "add item", id, uid, func(p *Playlist) Result {
		if p.HasItem(item.ID) {
			return skipped(ReasonDuplicate)
		}
		p.Items = append(media.Clone(p.Items), item)
		return applied()
	})
}

// RemoveItem drops every item with itemID. When none matches nothing is
// written.
func (s *Store) RemoveItem(ctx context.Context, id, itemID string) (Result, error) {
	uid := s.userID()
	if uid == "" {
		return Result{}, ErrNotAuthenticated
	}

	return s.mutate(ctx, "remove item", id, uid, func(p *Playlist) Result {
		if !p.HasItem(itemID) {
			return skipped(ReasonItemAbsent)
		}
		p.Items = media.Without(p.Items, itemID)
		return applied()
	})
}

// mutate runs a read-modify-write on one playlist while holding its lock.
// Backends that implement docstore.Updater do the read and write
// atomically; for the rest the lock alone serializes this process.
func (s *Store) mutate(ctx context.Context, op, id, uid string, change func(p *Playlist) Result) (Result, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if up, ok := s.coll.(docstore.Updater); ok {
		var res Result
		err := up.Update(ctx, id, func(doc *docstore.Document) (bool, error) {
			if doc.UserID != uid {
				res = Result{Outcome: Skipped, Reason: ReasonNotOwned}
				return false, nil
			}
			p := fromDocument(*doc)
			res = change(&p)
			if res.Outcome != Applied {
				return false, nil
			}
			doc.Items = media.Clone(p.Items)
			return true, nil
		})
		if err != nil {
			return s.classify(ctx, op, id, err)
		}
		if res.Reason == ReasonNotOwned {
			return s.notOwned(op, id), nil
		}
		return res, nil
	}

	doc, err := s.coll.Get(ctx, id)
	if err != nil {
		return s.classify(ctx, op, id, err)
	}
	if doc.UserID != uid {
		return s.notOwned(op, id), nil
	}
	p := fromDocument(doc)
	res := change(&p)
	if res.Outcome != Applied {
		return res, nil
	}
	res = s.save(ctx, p)
	if res.Outcome == Failed {
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Store) notOwned(op, id string) Result {
	s.logger.Warn(op+": playlist does not belong to user", "playlist", id)
	return skipped(ReasonNotOwned)
}

// classify turns a collection error into a Result. Only context
// cancellation is passed back as an error.
func (s *Store) classify(ctx context.Context, op, id string, err error) (Result, error) {
	switch {
	case docstore.IsNotFound(err):
		s.logger.Warn(op+": playlist not found", "playlist", id)
		return skipped(ReasonNotFound), nil
	case docstore.IsDenied(err):
		s.logger.Warn(op+": permission denied, operation skipped", "playlist", id, "error", err)
		return denied(), nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return failed(), err
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(), ctxErr
		}
		s.logger.Error(op+" failed", "playlist", id, "error", err)
		return failed(), nil
	}
}
