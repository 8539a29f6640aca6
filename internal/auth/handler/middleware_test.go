package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinika/clinika-backend/internal/auth/jwt"
	"github.com/clinika/clinika-backend/pkg/config"
	"github.com/clinika/clinika-backend/pkg/httputil"
)

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "clinika-test",
	})
}

func protected(manager *jwt.Manager) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{
			"user_id": httputil.GetUserID(r.Context()),
		})
	})
	return RequireAuth(manager, "/login")(next)
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?q=Иванов&page=2", nil)

	protected(newManager()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	assert.Equal(t, "/login?to=%2Fapi%2Fv1%2Fpatients%3Fq%3D%D0%98%D0%B2%D0%B0%D0%BD%D0%BE%D0%B2%26page%3D2",
		resp.Error.Details["redirect"])
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	protected(newManager()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "/login?to=%2Fapi%2Fv1%2Fexpenses", resp.Error.Details["redirect"])
}

func TestRequireRoleGatesAdminRoutes(t *testing.T) {
	manager := newManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.NoContent(w)
	})
	gated := RequireAuth(manager, "/login")(RequireRole("admin")(next))

	token := func(role string) string {
		pair, err := manager.GenerateTokenPair(&jwt.UserInfo{
			ID:   "U1",
			Role: role,
		}, "session-1")
		require.NoError(t, err)
		return pair.AccessToken
	}

	// Anonymous callers never reach the role check.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	gated.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A staff account is authenticated but not allowed.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	req.Header.Set("Authorization", "Bearer "+token("staff"))
	gated.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	// Admins pass.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	req.Header.Set("Authorization", "Bearer "+token("admin"))
	gated.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAuthPassesValidToken(t *testing.T) {
	manager := newManager()
	pair, err := manager.GenerateTokenPair(&jwt.UserInfo{
		ID:    "U1",
		Email: "admin@clinika.kg",
		Name:  "Админ",
		Role:  "admin",
	}, "session-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	protected(manager).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"U1"`)
}
