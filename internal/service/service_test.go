package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/pkg/keycipher"
	"github.com/qs3c/sheetsync_server/internal/repository"
	"github.com/qs3c/sheetsync_server/internal/testutil"
)

const testEncryptionSecret = "test-encryption-secret"

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-jwt-secret",
			ExpireHours: 24,
		},
		Encryption: config.EncryptionConfig{Secret: testEncryptionSecret},
		Plans: map[string]config.PlanConfig{
			"free": {RequestsLimit: 100},
			"pro":  {RequestsLimit: 1000},
		},
	}
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	cipher      *keycipher.Cipher
	profileRepo *repository.ProfileRepository
	apiKeyRepo  *repository.APIKeyRepository
	usageRepo   *repository.UsageLogRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	c, err := keycipher.New(testEncryptionSecret)
	require.NoError(t, err)

	return &testEnv{
		db:          db,
		cfg:         newTestConfig(),
		cipher:      c,
		profileRepo: repository.NewProfileRepository(db),
		apiKeyRepo:  repository.NewAPIKeyRepository(db),
		usageRepo:   repository.NewUsageLogRepository(db),
	}
}

func (e *testEnv) quotaService() *QuotaService {
	return NewQuotaService(e.db, e.profileRepo, e.usageRepo, e.cfg)
}

func (e *testEnv) apiKeyService() *APIKeyService {
	return NewAPIKeyService(e.apiKeyRepo, e.profileRepo, e.cipher)
}

func (e *testEnv) profileService() *ProfileService {
	return NewProfileService(e.profileRepo, e.apiKeyRepo, e.cfg)
}

func newCipher(t *testing.T, secret string) *keycipher.Cipher {
	t.Helper()

	c, err := keycipher.New(secret)
	require.NoError(t, err)
	return c
}
