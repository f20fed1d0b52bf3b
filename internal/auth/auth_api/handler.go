package auth_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/engdahman/conference-app/internal/auth"
	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

// UserStore is the account lookup the login flow needs. A missing user is
// (nil, nil), not an error.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handler implements session login/logout and the current-user probe.
type Handler struct {
	Users  UserStore
	Cfg    config.AuthConfig
	Logger *logger.Logger
}

func NewHandler(users UserStore, cfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{Users: users, Cfg: cfg, Logger: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin checks credentials against stored accounts, falling back to the
// bootstrap admin from the environment so a fresh deployment is reachable
// before any account exists.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("bad_input"))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errBody("bad_input"))
		return
	}

	user, err := h.resolveUser(r.Context(), req)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("login lookup failed: %v", err))
		writeJSON(w, http.StatusInternalServerError, errBody("db_unavailable"))
		return
	}
	if user == nil {
		h.Logger.Warn("AUTH", "failed login for "+req.Username)
		writeJSON(w, http.StatusUnauthorized, errBody("invalid_credentials"))
		return
	}

	token, err := auth.SignToken(user, h.Cfg)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("token signing failed: %v", err))
		writeJSON(w, http.StatusInternalServerError, errBody("internal_error"))
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.Cfg.TokenTTL))
	h.Logger.Info("AUTH", "login "+user.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"username": user.Username,
			"roles":    user.Roles(),
		},
	})
}

// resolveUser returns the authenticated user or nil when the credentials do
// not match any account.
func (h *Handler) resolveUser(ctx context.Context, req loginRequest) (*models.User, error) {
	user, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) == nil {
			return user, nil
		}
		return nil, nil
	}

	// Bootstrap fallback: the environment-configured admin works only while
	// no account shadows that username.
	if req.Username == h.Cfg.AdminDefaultUser && req.Password == h.Cfg.AdminDefaultPass {
		return &models.User{
			ID:       "env-admin",
			Username: h.Cfg.AdminDefaultUser,
			Role:     models.RoleAdmin,
		}, nil
	}
	return nil, nil
}

// HandleMe reports the current session's identity; the front-end uses it to
// decide which dashboard sections to render.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"username": claims.Username,
			"roles":    claims.Roles,
		},
	})
}

// HandleLogout clears the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -time.Hour))
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

func errBody(code string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": code}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
