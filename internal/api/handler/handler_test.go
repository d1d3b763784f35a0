package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/api/middleware"
	"github.com/qs3c/sheetsync_server/internal/pkg/jwt"
	"github.com/qs3c/sheetsync_server/internal/pkg/keycipher"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/repository"
	"github.com/qs3c/sheetsync_server/internal/service"
	"github.com/qs3c/sheetsync_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-jwt-secret"

type testContext struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Cipher *keycipher.Cipher

	ProfileRepo *repository.ProfileRepository
	APIKeyRepo  *repository.APIKeyRepository
	UsageRepo   *repository.UsageLogRepository

	ProfileService      *service.ProfileService
	QuotaService        *service.QuotaService
	UsageService        *service.UsageService
	APIKeyService       *service.APIKeyService
	ConnectTokenService *service.ConnectTokenService
}

func setupTestContext(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		JWT:        config.JWTConfig{Secret: testJWTSecret, ExpireHours: 24},
		Encryption: config.EncryptionConfig{Secret: "test-encryption-secret"},
	}
	c, err := keycipher.New(cfg.Encryption.Secret)
	require.NoError(t, err)

	ctx := &testContext{
		DB:          db,
		Cfg:         cfg,
		Cipher:      c,
		ProfileRepo: repository.NewProfileRepository(db),
		APIKeyRepo:  repository.NewAPIKeyRepository(db),
		UsageRepo:   repository.NewUsageLogRepository(db),
	}
	ctx.ProfileService = service.NewProfileService(ctx.ProfileRepo, ctx.APIKeyRepo, cfg)
	ctx.QuotaService = service.NewQuotaService(db, ctx.ProfileRepo, ctx.UsageRepo, cfg)
	ctx.UsageService = service.NewUsageService(ctx.UsageRepo)
	ctx.APIKeyService = service.NewAPIKeyService(ctx.APIKeyRepo, ctx.ProfileRepo, c)
	ctx.ConnectTokenService = service.NewConnectTokenService(ctx.ProfileRepo)
	return ctx
}

// mockAuth 模拟只带用户 ID 的登录态
func mockAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// mockClaims 模拟完整的 token claims
func mockClaims(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.ClaimsKey, &jwt.Claims{UserID: userID, Email: email})
		c.Next()
	}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is %T", resp.Data)
	return data
}
