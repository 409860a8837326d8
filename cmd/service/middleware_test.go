package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware(t *testing.T) {
	h := corsMiddleware("https://listtube.example")(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/playlists", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://listtube.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodySizeLimitMiddleware(t *testing.T) {
	h := bodySizeLimitMiddleware(8)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(`{"name":"far too long"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(`{}`))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := newCreateLimiter(5 * time.Second)
	limiter.now = func() time.Time { return now }

	h, issuer := newTestRouter(t, nil, limiter)
	alice := bearer(t, issuer, "alice")
	bob := bearer(t, issuer, "bob")

	rr := do(h, http.MethodPost, "/playlists", alice, `{"name":"one"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(h, http.MethodPost, "/playlists", alice, `{"name":"two"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	rr = do(h, http.MethodPost, "/playlists", bob, `{"name":"bob's"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = do(h, http.MethodGet, "/playlists", alice, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	now = now.Add(6 * time.Second)
	rr = do(h, http.MethodPost, "/playlists", alice, `{"name":"two"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateLimiterForgetsExpiredUsers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := newCreateLimiter(5 * time.Second)
	limiter.now = func() time.Time { return now }

	h, issuer := newTestRouter(t, nil, limiter)
	for _, uid := range []string{"u1", "u2", "u3"} {
		rr := do(h, http.MethodPost, "/playlists", bearer(t, issuer, uid), `{"name":"p"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	assert.Equal(t, 3, limiter.size())

	now = now.Add(6 * time.Second)
	rr := do(h, http.MethodPost, "/playlists", bearer(t, issuer, "u4"), `{"name":"p"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, limiter.size())

	rr = do(h, http.MethodPost, "/playlists", bearer(t, issuer, "u1"), `{"name":"again"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}
