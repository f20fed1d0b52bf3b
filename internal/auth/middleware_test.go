package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engdahman/conference-app/internal/models"
)

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	m, err := NewMiddleware(context.Background(), testAuthConfig(), nil)
	require.NoError(t, err)
	return m
}

func protectedEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(claims.Username))
	})
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := SignToken(&models.User{ID: "u1", Username: "tester", Role: role}, testAuthConfig())
	require.NoError(t, err)
	return token
}

func TestRequireRoleWithCookie(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleStaff)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/checkin", nil)
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: tokenFor(t, models.RoleStaff)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tester", rec.Body.String())
}

func TestRequireRoleWithBearer(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleAdmin)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleAdmin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleNoToken(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleStaff)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/checkin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleStaffCannotReachAdmin(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleAdmin)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: tokenFor(t, models.RoleStaff)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAdminReachesStaffRoutes(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleStaff)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/checkin", nil)
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: tokenFor(t, models.RoleAdmin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsTamperedToken(t *testing.T) {
	m := newTestMiddleware(t)
	handler := m.RequireRole(models.RoleStaff)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/checkin", nil)
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: tokenFor(t, models.RoleStaff) + "x"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
