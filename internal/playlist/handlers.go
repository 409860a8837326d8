package playlist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// storeFor binds the Store to whoever made the request.
func (s *Server) storeFor(r *http.Request) *Store {
	return s.store.As(identity.NewFixed(identity.FromRequest(r)))
}

// statusFor maps a mutation Result to the response status. Skipped
// operations still answer 200 since the collection is in the requested
// state.
func statusFor(res Result, okStatus int) int {
	switch res.Outcome {
	case Denied:
		return http.StatusForbidden
	case Failed:
		return http.StatusBadGateway
	default:
		return okStatus
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "missing user context")
	case errors.Is(err, ErrInvalidName):
		writeError(w, http.StatusBadRequest, ErrInvalidName.Error())
	default:
		// context cancellation: the client is gone or the request timed out
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	}
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, res, err := s.storeFor(r).List(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	switch res.Outcome {
	case Denied:
		writeError(w, http.StatusForbidden, "permission denied")
	case Failed:
		writeError(w, http.StatusBadGateway, "failed to load playlists")
	default:
		writeJSON(w, http.StatusOK, playlists)
	}
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, res, err := s.storeFor(r).Create(r.Context(), body.Name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, statusFor(res, http.StatusCreated), map[string]any{
		"playlist": p,
		"result":   res,
	})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	res, err := s.storeFor(r).Delete(r.Context(), playlistID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, statusFor(res, http.StatusOK), map[string]any{"result": res})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	var item media.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		writeError(w, http.StatusBadRequest, "item id is required")
		return
	}

	res, err := s.storeFor(r).AddItem(r.Context(), playlistID, item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, statusFor(res, http.StatusOK), map[string]any{"result": res})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")

	res, err := s.storeFor(r).RemoveItem(r.Context(), playlistID, itemID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, statusFor(res, http.StatusOK), map[string]any{"result": res})
}
