// Package identity models the signed-in user and the provider that reports
// sign-in changes, plus the token and HTTP plumbing that carries an identity
// across process boundaries.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrSignInCancelled means the user abandoned sign-in. Callers treat it
	// as a no-op rather than a failure.
	ErrSignInCancelled = errors.New("identity: sign-in cancelled")
	// ErrInvalidToken is returned for malformed, expired or mistyped tokens.
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Identity is an authenticated user. UID is the stable key playlists are
// owned by.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// State is what a provider reports on every change. While Loading is true
// the provider has not yet resolved whether anyone is signed in.
type State struct {
	Loading bool
	User    *Identity
}

// Source reports the current identity, or nil when nobody is signed in.
type Source interface {
	Current() *Identity
}

// Provider is a Source that can also be observed and driven.
type Provider interface {
	Source
	// Subscribe registers fn for state changes and immediately delivers the
	// current state. The returned func stops delivery. fn must not call
	// back into the provider.
	Subscribe(fn func(State)) (cancel func())
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// Fixed is a Source that always reports the same identity. A nil Fixed
// reports nobody.
type Fixed struct {
	id *Identity
}

func NewFixed(id *Identity) *Fixed {
	return &Fixed{id: id}
}

func (f *Fixed) Current() *Identity {
	if f == nil || f.id == nil {
		return nil
	}
	id := *f.id
	return &id
}

type ctxIdentityKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxIdentityKey{}).(*Identity)
	return id
}
