package session

import (
	"context"
	"sync"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
)

// HandleIdentity moves the session to match st and, for a signed-in user,
// loads their playlists. A load that finishes after any newer identity
// change, including a return to Loading, is discarded.
func (s *Session) HandleIdentity(ctx context.Context, st identity.State) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	if st.Loading {
		s.state = Pending
		s.mu.Unlock()
		return nil
	}

	if st.User == nil {
		s.state = Unauthenticated
		s.user = nil
		s.playlists = []playlist.Playlist{}
		s.activeID = ""
		s.mu.Unlock()
		return nil
	}

	u := *st.User
	s.user = &u
	s.state = Loading
	s.message = ""
	s.mu.Unlock()

	list, res, err := s.store.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("discarding stale playlist load", "user", u.UID)
		return nil
	}
	if err != nil || !res.Settled() {
		s.state = Error
		s.playlists = []playlist.Playlist{}
		s.activeID = ""
		s.message = MsgLoadFailed
		if err == nil {
			s.logger.Warn("load playlists", "user", u.UID, "result", res.String())
		}
		return err
	}

	s.state = Ready
	s.playlists = list
	s.reselect()
	return nil
}

// Run follows p until ctx ends, handling only the latest identity state
// when changes arrive faster than loads complete.
func (s *Session) Run(ctx context.Context, p identity.Provider) error {
	var (
		mu     sync.Mutex
		latest identity.State
	)
	wake := make(chan struct{}, 1)

	cancel := p.Subscribe(func(st identity.State) {
		mu.Lock()
		latest = st
		mu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
			mu.Lock()
			st := latest
			mu.Unlock()
			if err := s.HandleIdentity(ctx, st); err != nil && ctx.Err() == nil {
				s.logger.Error("handle identity change", "error", err)
			}
		}
	}
}
