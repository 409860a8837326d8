package identity

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

// Middleware authenticates Bearer access tokens. A valid token sets the
// X-User-Id and X-User-Email headers and the context identity; a request
// without a token continues anonymously. Identity headers sent by the client
// are always dropped.
func Middleware(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(HeaderUserID)
			r.Header.Del(HeaderUserEmail)

			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header")
				return
			}

			claims, err := issuer.VerifyAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			r.Header.Set(HeaderUserID, claims.UserID)
			r.Header.Set(HeaderUserEmail, claims.Email)

			ctx := WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromRequest returns the identity established by Middleware, falling back
// to the X-User-Id header set by an upstream gateway.
func FromRequest(r *http.Request) *Identity {
	if id := FromContext(r.Context()); id != nil {
		return id
	}
	uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if uid == "" {
		return nil
	}
	return &Identity{UID: uid, Email: r.Header.Get(HeaderUserEmail)}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
