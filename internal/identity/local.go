package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Authenticator performs the interactive part of sign-in.
type Authenticator interface {
	Authenticate(ctx context.Context) (*Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context) (*Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context) (*Identity, error) {
	return f(ctx)
}

// Local is an in-process Provider. It starts in the loading state until
// Resolve, SignIn or SignOut settles it.
type Local struct {
	auth   Authenticator
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	nextSub int
	subs    map[int]func(State)

	// notifyMu keeps deliveries in the order the changes happened.
	notifyMu sync.Mutex
}

func NewLocal(auth Authenticator, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		auth:   auth,
		logger: logger,
		state:  State{Loading: true},
		subs:   make(map[int]func(State)),
	}
}

func (l *Local) Current() *Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyIdentity(l.state.User)
}

func (l *Local) Subscribe(fn func(State)) func() {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	st := l.snapshot()
	l.mu.Unlock()

	fn(st)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

// Resolve settles the provider with a restored identity (or nobody) without
// going through the authenticator.
func (l *Local) Resolve(user *Identity) {
	l.set(State{User: copyIdentity(user)})
}

func (l *Local) SignIn(ctx context.Context) error {
	user, err := l.auth.Authenticate(ctx)
	if err != nil {
		if errors.Is(err, ErrSignInCancelled) {
			l.logger.Info("sign-in cancelled")
		} else {
			l.logger.Error("sign-in failed", "error", err)
		}
		return err
	}
	if user == nil || user.UID == "" {
		return ErrInvalidToken
	}
	l.set(State{User: copyIdentity(user)})
	l.logger.Info("signed in", "uid", user.UID)
	return nil
}

func (l *Local) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.set(State{})
	l.logger.Info("signed out")
	return nil
}

func (l *Local) set(st State) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	l.state = st
	subs := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	snap := l.snapshot()
	l.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (l *Local) snapshot() State {
	return State{Loading: l.state.Loading, User: copyIdentity(l.state.User)}
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
