package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenClaims struct {
	UserID      string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) Identity() *Identity {
	return &Identity{UID: c.UserID, Email: c.Email, DisplayName: c.DisplayName}
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) Issue(user Identity) (Tokens, error) {
	now := i.now()

	access, err := i.sign(user, TokenTypeAccess, now, i.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := i.sign(user, TokenTypeRefresh, now, i.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(user Identity, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID:      user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TokenType:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses raw and checks its signature, expiry and subject.
func (i *Issuer) Verify(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess is Verify restricted to access tokens.
func (i *Issuer) VerifyAccess(raw string) (*TokenClaims, error) {
	claims, err := i.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: expected access token, got %q", ErrInvalidToken, claims.TokenType)
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (i *Issuer) Refresh(raw string) (Tokens, error) {
	claims, err := i.Verify(raw)
	if err != nil {
		return Tokens{}, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return Tokens{}, fmt.Errorf("%w: expected refresh token", ErrInvalidToken)
	}
	return i.Issue(*claims.Identity())
}

// TokenAuthenticator signs in whoever the configured token names. An empty
// token counts as a cancelled sign-in.
type TokenAuthenticator struct {
	issuer *Issuer
	token  string
}

func NewTokenAuthenticator(issuer *Issuer, token string) *TokenAuthenticator {
	return &TokenAuthenticator{issuer: issuer, token: token}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.token == "" {
		return nil, ErrSignInCancelled
	}
	claims, err := a.issuer.VerifyAccess(a.token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Identity(), nil
}
