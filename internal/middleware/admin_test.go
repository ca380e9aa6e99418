package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocation/internal/middleware"
	"github.com/iliyamo/exam-seat-allocation/internal/utils"
)

const testSecret = "test-secret"

func guarded(apiKey, secret string) *echo.Echo {
	e := echo.New()
	e.POST("/admin", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"role": c.Get("role")})
	}, middleware.AdminAuth(apiKey, secret))
	return e
}

func call(e *echo.Echo, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuth_Unconfigured(t *testing.T) {
	rec := call(guarded("", ""), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminAuth_APIKey(t *testing.T) {
	e := guarded("k3y", "")

	assert.Equal(t, http.StatusOK, call(e, map[string]string{middleware.AdminKeyHeader: "k3y"}).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, map[string]string{middleware.AdminKeyHeader: "nope"}).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, nil).Code)
}

func TestAdminAuth_BearerToken(t *testing.T) {
	e := guarded("", testSecret)

	admin, err := utils.NewAccessToken(testSecret, "admin", middleware.RoleAdmin, 5)
	require.NoError(t, err)
	rec := call(e, map[string]string{"Authorization": "Bearer " + admin.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"ADMIN"}`, rec.Body.String())

	viewer, err := utils.NewAccessToken(testSecret, "someone", "VIEWER", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(e, map[string]string{"Authorization": "Bearer " + viewer.Token}).Code)

	forged, err := utils.NewAccessToken("other-secret", "admin", middleware.RoleAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(e, map[string]string{"Authorization": "Bearer " + forged.Token}).Code)
}

func TestAdminAuth_KeyHeaderWithoutConfiguredKey(t *testing.T) {
	e := guarded("", testSecret)
	rec := call(e, map[string]string{middleware.AdminKeyHeader: "guess"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		middleware.JWTAuth(testSecret), middleware.RequireRole(middleware.RoleAdmin))

	get := func(auth string) int {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	admin, err := utils.NewAccessToken(testSecret, "admin", middleware.RoleAdmin, 5)
	require.NoError(t, err)
	viewer, err := utils.NewAccessToken(testSecret, "v", "VIEWER", 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, get("Bearer "+admin.Token))
	assert.Equal(t, http.StatusForbidden, get("Bearer "+viewer.Token))
	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, http.StatusUnauthorized, get("Bearer not-a-jwt"))
}
