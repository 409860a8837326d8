package identity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	googleScope       = "openid email profile"

	stateCookie = "listtube_oauth_state"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c GoogleConfig) configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	IDToken     string `json:"id_token"`
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Google implements the federated sign-in flow: it redirects to Google,
// exchanges the returned code and answers with ListTube tokens for the
// Google account.
type Google struct {
	cfg    GoogleConfig
	issuer *Issuer
	client *http.Client
	logger *slog.Logger

	authURL     string
	tokenURL    string
	userinfoURL string
}

func NewGoogle(cfg GoogleConfig, issuer *Issuer, logger *slog.Logger) *Google {
	if logger == nil {
		logger = slog.Default()
	}
	return &Google{
		cfg:         cfg,
		issuer:      issuer,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		authURL:     googleAuthURL,
		tokenURL:    googleTokenURL,
		userinfoURL: googleUserinfoURL,
	}
}

func (g *Google) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/auth/google/login", g.handleLogin)
	r.Get("/auth/google/callback", g.handleCallback)
	r.Post("/auth/refresh", g.handleRefresh)
	return r
}

func (g *Google) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !g.cfg.configured() {
		writeError(w, http.StatusServiceUnavailable, "google oauth not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	v := url.Values{}
	v.Set("client_id", g.cfg.ClientID)
	v.Set("redirect_uri", g.cfg.RedirectURL)
	v.Set("response_type", "code")
	v.Set("scope", googleScope)
	v.Set("state", state)
	v.Set("access_type", "online")
	v.Set("prompt", "select_account")

	http.Redirect(w, r, g.authURL+"?"+v.Encode(), http.StatusFound)
}

func (g *Google) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !g.cfg.configured() {
		writeError(w, http.StatusServiceUnavailable, "google oauth not configured")
		return
	}

	q := r.URL.Query()
	if errStr := q.Get("error"); errStr != "" {
		// access_denied is the user closing the consent screen
		if errStr == "access_denied" {
			writeError(w, http.StatusBadRequest, ErrSignInCancelled.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "google error: "+errStr)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("redirect_uri", g.cfg.RedirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("google callback: token exchange", "error", err)
		writeError(w, http.StatusBadGateway, "google token exchange failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("google callback: token exchange status", "status", resp.StatusCode)
		writeError(w, http.StatusBadGateway, "google token exchange failed")
		return
	}

	var tr googleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		writeError(w, http.StatusBadGateway, "invalid google token response")
		return
	}

	ui, err := g.fetchUserInfo(r, tr.AccessToken)
	if err != nil {
		g.logger.Error("google callback: userinfo", "error", err)
		writeError(w, http.StatusBadGateway, "google userinfo failed")
		return
	}

	email := strings.TrimSpace(strings.ToLower(ui.Email))
	if ui.Sub == "" {
		writeError(w, http.StatusBadGateway, "google userinfo missing sub")
		return
	}

	tokens, err := g.issuer.Issue(Identity{UID: ui.Sub, Email: email, DisplayName: ui.Name})
	if err != nil {
		g.logger.Error("google callback: issue tokens", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.logger.Info("google sign-in", "uid", ui.Sub)
	writeJSON(w, http.StatusOK, tokens)
}

func (g *Google) fetchUserInfo(r *http.Request, accessToken string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var ui googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil {
		return googleUserInfo{}, err
	}
	return ui, nil
}

func (g *Google) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	tokens, err := g.issuer.Refresh(body.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}
