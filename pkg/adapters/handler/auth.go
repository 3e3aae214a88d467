package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wadjakorntonsri/linkpage/pkg/config"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

const (
	stateCookie        = "oauthstate"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthExchangeLimit = 10 * time.Second
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	profiles    ports.ProfileService
	cfg         *config.Config
	userInfoURL string
	log         *logger.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, profiles ports.ProfileService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		profiles:    profiles,
		cfg:         cfg,
		userInfoURL: googleUserInfoURL,
		log:         log.With(map[string]any{"component": "auth"}),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := h.generateStateOauthCookie(w)
	if err != nil {
		h.log.Error(err, "generate oauth state")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie(stateCookie)
	if err != nil {
		h.log.Warn("callback without oauth state cookie")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	if r.FormValue("state") != oauthState.Value {
		h.log.Warn("callback with mismatched oauth state")
		http.Error(w, "invalid oauth google state", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauthExchangeLimit)
	defer cancel()

	token, err := h.oauthConfig.Exchange(ctx, r.FormValue("code"))
	if err != nil {
		h.log.Error(err, "oauth code exchange")
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}

	googleUser, err := h.fetchUser(ctx, token)
	if err != nil {
		h.log.Error(err, "fetch google user")
		http.Error(w, "failed getting user info", http.StatusBadGateway)
		return
	}

	if !h.cfg.EmailAllowed(googleUser.Email) {
		h.log.With(map[string]any{"email": googleUser.Email}).Warn("email not in allowlist")
		http.Error(w, "Access denied: your email is not in the allowlist", http.StatusForbidden)
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), googleUser.Email, googleUser.Name, googleUser.Picture)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	tokenString, expires, err := IssueToken(h.cfg, profile.ID)
	if err != nil {
		h.log.Error(err, "sign session token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	h.log.With(map[string]any{"profile_id": profile.ID}).Info("login successful")
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchUser(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := h.oauthConfig.Client(ctx, token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: status %d", resp.StatusCode)
	}
	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("userinfo: decode: %w", err)
	}
	if !user.VerifiedEmail {
		return nil, fmt.Errorf("userinfo: email %s is not verified", user.Email)
	}
	return &user, nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.cfg.FrontendURL+"/login", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// IssueToken signs a session token whose subject is the profile id.
func IssueToken(cfg *config.Config, profileID string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(cfg.JWTTTL)
	claims := &jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	return signed, expires, err
}
