package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/sheetsync_server/internal/pkg/jwt"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func newAuthRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(Auth(testJWTSecret))
	router.GET("/test", handler)
	return router
}

func TestAuth_Success(t *testing.T) {
	router := newAuthRouter(func(c *gin.Context) {
		userID, ok := GetUserID(c)
		assert.True(t, ok)
		assert.Equal(t, "user-123", userID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	token, err := jwt.GenerateToken("user-123", testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejected(t *testing.T) {
	expired, err := jwt.GenerateToken("user-123", testJWTSecret, -1)
	require.NoError(t, err)
	otherSecret, err := jwt.GenerateToken("user-123", "another-secret", 24)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no bearer prefix", header: "Token abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + otherSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			router := newAuthRouter(func(c *gin.Context) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
		})
	}
}

func TestGetIdentity(t *testing.T) {
	token, err := jwt.GenerateToken("user-1", testJWTSecret, 24,
		jwt.WithEmail("jane@example.com"),
		jwt.WithMetadata(jwt.UserMetadata{Name: "Jane", Picture: "https://example.com/p.png"}),
	)
	require.NoError(t, err)

	router := newAuthRouter(func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		require.True(t, ok)
		assert.Equal(t, "user-1", identity.UserID)
		assert.Equal(t, "jane@example.com", identity.Email)
		require.NotNil(t, identity.FullName)
		assert.Equal(t, "Jane", *identity.FullName)
		require.NotNil(t, identity.AvatarURL)
		assert.Equal(t, "https://example.com/p.png", *identity.AvatarURL)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetIdentity_PrefersFullName(t *testing.T) {
	token, err := jwt.GenerateToken("user-1", testJWTSecret, 24,
		jwt.WithMetadata(jwt.UserMetadata{FullName: "Jane Doe", Name: "jane", AvatarURL: "a.png", Picture: "p.png"}),
	)
	require.NoError(t, err)

	router := newAuthRouter(func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		require.True(t, ok)
		assert.Empty(t, identity.Email)
		assert.Equal(t, "Jane Doe", *identity.FullName)
		assert.Equal(t, "a.png", *identity.AvatarURL)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	_, ok = GetIdentity(c)
	assert.False(t, ok)

	c.Set(UserIDKey, 123)
	_, ok = GetUserID(c)
	assert.False(t, ok)
}
