package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoaji/user-profile-service/internal/interface/middleware"
	"github.com/dittoaji/user-profile-service/pkg/helpers"
)

func authRouter(t *testing.T, manager *helpers.JWTManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.Auth(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString(middleware.CtxUserIDKey),
			"userEmail": c.GetString(middleware.CtxUserEmailKey),
			"userRole":  c.GetString(middleware.CtxUserRoleKey),
		})
	})
	return r
}

func authRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	manager, err := helpers.NewJWTManager("test-secret", "", "HS256")
	require.NoError(t, err)
	r := authRouter(t, manager)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "bearer lowercase", "Token abc"} {
		w := authRequest(r, header)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Equal(t, "Missing or invalid Authorization header (expected Bearer <token>)", errMessage(t, w))
	}
}

func TestAuth_EmptyToken(t *testing.T) {
	manager, err := helpers.NewJWTManager("test-secret", "", "HS256")
	require.NoError(t, err)

	w := authRequest(authRouter(t, manager), "Bearer   ")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing token", errMessage(t, w))
}

func TestAuth_InvalidToken(t *testing.T) {
	manager, err := helpers.NewJWTManager("test-secret", "", "HS256")
	require.NoError(t, err)

	w := authRequest(authRouter(t, manager), "Bearer not.a.jwt")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errMessage(t, w))
}

func TestAuth_ExpiredToken(t *testing.T) {
	manager, err := helpers.NewJWTManager("test-secret", "", "HS256")
	require.NoError(t, err)
	token, err := manager.Generate("user-1", "", "", -time.Minute)
	require.NoError(t, err)

	w := authRequest(authRouter(t, manager), "Bearer "+token)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", errMessage(t, w))
}

func TestAuth_ValidTokenExposesClaims(t *testing.T) {
	manager, err := helpers.NewJWTManager("test-secret", "", "HS256")
	require.NoError(t, err)
	token, err := manager.Generate("user-1", "ayu@example.com", "admin", time.Minute)
	require.NoError(t, err)

	w := authRequest(authRouter(t, manager), "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["userID"])
	assert.Equal(t, "ayu@example.com", body["userEmail"])
	assert.Equal(t, "admin", body["userRole"])
}
