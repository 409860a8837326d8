package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Khateeb-Urrahman/ListTube/internal/logging"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

func TestHandleSearch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		lookup := new(MockLookup)
		hits := []media.Item{{ID: "3", Title: "TypeScript Advanced Patterns"}}
		lookup.On("Search", mock.Anything, "typescript").Return(hits, nil)

		srv := NewServer(lookup, logging.Discard())
		req := httptest.NewRequest(http.MethodGet, "/search?q=typescript", nil)
		rr := httptest.NewRecorder()
		srv.Router().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Results []media.Item `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, hits, body.Results)
		lookup.AssertExpectations(t)
	})

	t.Run("catalog end to end", func(t *testing.T) {
		srv := NewServer(NewService(nil, nil, logging.Discard()), logging.Discard())
		req := httptest.NewRequest(http.MethodGet, "/search?q=CSS", nil)
		rr := httptest.NewRecorder()
		srv.HandleSearch(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Tailwind CSS Deep Dive")
		assert.Contains(t, rr.Body.String(), "CSS Variables and Custom Properties")
	})

	t.Run("query too long", func(t *testing.T) {
		srv := NewServer(new(MockLookup), logging.Discard())
		req := httptest.NewRequest(http.MethodGet, "/search?q="+strings.Repeat("a", 201), nil)
		rr := httptest.NewRecorder()
		srv.HandleSearch(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "too long")
	})

	t.Run("provider error", func(t *testing.T) {
		lookup := new(MockLookup)
		lookup.On("Search", mock.Anything, "x").Return(nil, errors.New("down"))

		srv := NewServer(lookup, logging.Discard())
		req := httptest.NewRequest(http.MethodGet, "/search?q=x", nil)
		rr := httptest.NewRecorder()
		srv.HandleSearch(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "failed to query provider")
	})
}
