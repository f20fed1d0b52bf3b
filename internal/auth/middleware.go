package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/logger"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// Middleware guards dashboard routes. Sessions normally ride the httpOnly
// cookie issued at login; a Bearer token is accepted as well, and when an
// OIDC issuer is configured, Bearer tokens that fail local verification are
// checked against it so SSO-issued ID tokens also work.
type Middleware struct {
	cfg      config.AuthConfig
	verifier *oidc.IDTokenVerifier
	logger   *logger.Logger
}

func NewMiddleware(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (*Middleware, error) {
	m := &Middleware{cfg: cfg, logger: log}
	if cfg.OIDCIssuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, fmt.Errorf("oidc provider %s: %w", cfg.OIDCIssuer, err)
		}
		m.verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
		if log != nil {
			log.Info("AUTH", "OIDC verification enabled for issuer "+cfg.OIDCIssuer)
		}
	}
	return m, nil
}

// RequireRole rejects requests whose session lacks the given role. Verified
// claims are stored on the request context for handlers that need the caller
// identity.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.authenticate(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !claims.HasRole(role) {
				if m.logger != nil {
					m.logger.Warn("AUTH", fmt.Sprintf("%s denied: missing role %s", claims.Username, role))
				}
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, error) {
	token := m.extractToken(r)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := VerifyToken(token, m.cfg.JWTSecret)
	if err == nil {
		return claims, nil
	}

	if m.verifier != nil {
		return m.verifyOIDC(r.Context(), token)
	}
	return nil, err
}

// verifyOIDC accepts an ID token from the configured issuer and maps its
// claims into the local shape. Tokens without a roles claim get staff access
// only.
func (m *Middleware) verifyOIDC(ctx context.Context, rawToken string) (*Claims, error) {
	idToken, err := m.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var payload struct {
		Email             string   `json:"email"`
		PreferredUsername string   `json:"preferred_username"`
		Roles             []string `json:"roles"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, ErrInvalidToken
	}
	username := payload.PreferredUsername
	if username == "" {
		username = payload.Email
	}
	roles := payload.Roles
	if len(roles) == 0 {
		roles = []string{"staff"}
	}
	return &Claims{Username: username, Roles: roles}, nil
}

func (m *Middleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// ClaimsFromContext returns the verified session claims set by RequireRole.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": code})
}
