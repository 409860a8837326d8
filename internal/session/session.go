// Package session holds a client's view of its playlists: what is loaded,
// which playlist is active, the last search, and the message to show the
// user. It follows identity changes and mirrors confirmed Store results.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
	"github.com/Khateeb-Urrahman/ListTube/internal/search"
)

type State string

const (
	Pending         State = "pending"
	Unauthenticated State = "unauthenticated"
	Loading         State = "loading"
	Ready           State = "ready"
	Error           State = "error"
)

// User-facing messages.
const (
	MsgLoginToCreate    = "Please log in to create playlists"
	MsgLoginToDelete    = "Please log in to delete playlists"
	MsgLoginToAdd       = "Please log in to add items to playlists"
	MsgLoginToRemove    = "Please log in to remove items from playlists"
	MsgLoadFailed       = "Failed to load playlists."
	MsgCreateFailed     = "Failed to create playlist."
	MsgDeleteFailed     = "Failed to delete playlist."
	MsgAddFailed        = "Failed to add item to playlist."
	MsgRemoveFailed     = "Failed to remove item from playlist."
	MsgSearchFailed     = "Failed to search media."
	MsgNoActivePlaylist = "Select a playlist first."
)

var (
	ErrEmptyName        = errors.New("session: playlist name is empty")
	ErrNoActivePlaylist = errors.New("session: no active playlist")
)

// Store is the subset of *playlist.Store a session drives.
type Store interface {
	List(ctx context.Context) ([]playlist.Playlist, playlist.Result, error)
	Create(ctx context.Context, name string) (playlist.Playlist, playlist.Result, error)
	Delete(ctx context.Context, id string) (playlist.Result, error)
	AddItem(ctx context.Context, id string, item media.Item) (playlist.Result, error)
	RemoveItem(ctx context.Context, id, itemID string) (playlist.Result, error)
}

// Snapshot is a copy of everything a client renders.
type Snapshot struct {
	State     State
	User      *identity.Identity
	Playlists []playlist.Playlist
	Active    *playlist.Playlist
	Message   string
	Results   []media.Item
	Preview   *media.Item
}

// Session is safe for concurrent use. Its lock is never held while the
// Store or the lookup is working, so calls may overlap; each one applies
// its result against whatever state exists when it returns.
type Session struct {
	store  Store
	lookup search.Lookup
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	user      *identity.Identity
	gen       uint64 // bumped on every identity change
	playlists []playlist.Playlist
	activeID  string
	message   string

	searchGen uint64
	results   []media.Item
	preview   *media.Item
}

func New(store Store, lookup search.Lookup, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:     store,
		lookup:    lookup,
		logger:    logger,
		state:     Pending,
		playlists: []playlist.Playlist{},
		results:   []media.Item{},
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		Playlists: make([]playlist.Playlist, 0, len(s.playlists)),
		Message:   s.message,
		Results:   media.Clone(s.results),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	for _, p := range s.playlists {
		snap.Playlists = append(snap.Playlists, p.Clone())
	}
	if i := s.indexOf(s.activeID); i >= 0 {
		active := snap.Playlists[i]
		snap.Active = &active
	}
	if s.preview != nil {
		p := *s.preview
		snap.Preview = &p
	}
	return snap
}

// ClearMessage dismisses the current user-facing message.
func (s *Session) ClearMessage() {
	s.mu.Lock()
	s.message = ""
	s.mu.Unlock()
}

// Select makes id the active playlist. It reports false, changing nothing,
// when id is not loaded.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

func (s *Session) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// reselect keeps the active playlist if it is still loaded and otherwise
// falls back to the first playlist, or none.
func (s *Session) reselect() {
	if s.indexOf(s.activeID) >= 0 {
		return
	}
	s.activeID = ""
	if len(s.playlists) > 0 {
		s.activeID = s.playlists[0].ID
	}
}

// currentUser returns the signed-in user and the identity generation, or
// sets msg and returns false when nobody is signed in.
func (s *Session) currentUser(msg string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		s.message = msg
		return s.gen, false
	}
	return s.gen, true
}

func (s *Session) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// storeError sets the message for an error returned by the Store. Only
// authentication loss and cancellation are returned as errors.
func (s *Session) storeError(err error, loginMsg, failMsg string) error {
	if errors.Is(err, playlist.ErrNotAuthenticated) {
		s.setMessage(loginMsg)
	} else if !errors.Is(err, context.Canceled) {
		s.setMessage(failMsg)
	}
	return err
}

func (s *Session) CreatePlaylist(ctx context.Context, name string) (playlist.Playlist, playlist.Result, error) {
	gen, ok := s.currentUser(MsgLoginToCreate)
	if !ok {
		return playlist.Playlist{}, playlist.Result{}, playlist.ErrNotAuthenticated
	}
	if strings.TrimSpace(name) == "" {
		return playlist.Playlist{}, playlist.Result{}, ErrEmptyName
	}

	p, res, err := s.store.Create(ctx, name)
	if err != nil {
		return p, res, s.storeError(err, MsgLoginToCreate, MsgCreateFailed)
	}
	if res.Outcome != playlist.Applied {
		s.logger.Warn("create playlist not applied", "result", res.String())
		s.setMessage(MsgCreateFailed)
		return p, res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.indexOf(p.ID) < 0 {
		s.playlists = append(s.playlists, p.Clone())
		s.activeID = p.ID
	}
	return p, res, nil
}

func (s *Session) DeletePlaylist(ctx context.Context, id string) (playlist.Result, error) {
	gen, ok := s.currentUser(MsgLoginToDelete)
	if !ok {
		return playlist.Result{}, playlist.ErrNotAuthenticated
	}

	res, err := s.store.Delete(ctx, id)
	if err != nil {
		return res, s.storeError(err, MsgLoginToDelete, MsgDeleteFailed)
	}
	if !res.Settled() {
		s.setMessage(MsgDeleteFailed)
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return res, nil
	}
	kept := s.playlists[:0:0]
	for _, p := range s.playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.playlists = kept
	if s.activeID == id {
		s.activeID = ""
	}
	s.reselect()
	return res, nil
}

func (s *Session) AddItem(ctx context.Context, playlistID string, item media.Item) (playlist.Result, error) {
	gen, ok := s.currentUser(MsgLoginToAdd)
	if !ok {
		return playlist.Result{}, playlist.ErrNotAuthenticated
	}

	res, err := s.store.AddItem(ctx, playlistID, item)
	if err != nil {
		return res, s.storeError(err, MsgLoginToAdd, MsgAddFailed)
	}
	if !res.Settled() {
		s.setMessage(MsgAddFailed)
		return res, nil
	}

	s.apply(gen, playlistID, func(p *playlist.Playlist) {
		if !p.HasItem(item.ID) {
			p.Items = append(media.Clone(p.Items), item)
		}
	})
	return res, nil
}

func (s *Session) RemoveItem(ctx context.Context, playlistID, itemID string) (playlist.Result, error) {
	gen, ok := s.currentUser(MsgLoginToRemove)
	if !ok {
		return playlist.Result{}, playlist.ErrNotAuthenticated
	}

	res, err := s.store.RemoveItem(ctx, playlistID, itemID)
	if err != nil {
		return res, s.storeError(err, MsgLoginToRemove, MsgRemoveFailed)
	}
	if !res.Settled() {
		s.setMessage(MsgRemoveFailed)
		return res, nil
	}

	s.apply(gen, playlistID, func(p *playlist.Playlist) {
		p.Items = media.Without(p.Items, itemID)
	})
	return res, nil
}

// AddToActive adds item to the active playlist and closes the preview.
func (s *Session) AddToActive(ctx context.Context, item media.Item) (playlist.Result, error) {
	s.mu.Lock()
	if s.user == nil {
		s.message = MsgLoginToAdd
		s.mu.Unlock()
		return playlist.Result{}, playlist.ErrNotAuthenticated
	}
	activeID := s.activeID
	if activeID == "" {
		s.message = MsgNoActivePlaylist
		s.mu.Unlock()
		return playlist.Result{}, ErrNoActivePlaylist
	}
	s.preview = nil
	s.mu.Unlock()

	return s.AddItem(ctx, activeID, item)
}

// apply changes the loaded copy of playlistID, unless the identity changed
// since gen was taken.
func (s *Session) apply(gen uint64, playlistID string, change func(p *playlist.Playlist)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if i := s.indexOf(playlistID); i >= 0 {
		p := s.playlists[i].Clone()
		change(&p)
		s.playlists[i] = p
	}
}
