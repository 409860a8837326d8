package search

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxQueryLen = 200

type Server struct {
	lookup Lookup
	logger *slog.Logger
}

func NewServer(lookup Lookup, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{lookup: lookup, logger: logger}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/search", s.HandleSearch)
	return r
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) > maxQueryLen {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	results, err := s.lookup.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", "query", q, "error", err)
		writeError(w, http.StatusBadGateway, "failed to query provider")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
