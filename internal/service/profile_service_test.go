package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/testutil"
)

func strPtr(s string) *string {
	return &s
}

func TestProfileService_EnsureProfile_Creates(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.profileService()
	ctx := context.Background()

	identity := &dto.Identity{
		UserID:    uuid.NewString(),
		Email:     "new@example.com",
		FullName:  strPtr("New User"),
		AvatarURL: strPtr("https://example.com/a.png"),
	}

	profile, err := svc.EnsureProfile(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, profile.ID)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.Equal(t, model.PlanFree, profile.Plan)
	assert.Equal(t, 0, profile.RequestsUsed)
	assert.Equal(t, 100, profile.RequestsLimit)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "New User", *profile.FullName)
	assert.Nil(t, profile.ConnectToken)

	// 第二次调用返回同一条记录
	again, err := svc.EnsureProfile(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	var count int64
	require.NoError(t, env.db.Model(&model.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileService_EnsureProfile_Existing(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.profileService()

	existing := testutil.TestProfile(t, env.db, testutil.WithRequestsUsed(42))

	profile, err := svc.EnsureProfile(context.Background(), &dto.Identity{
		UserID: existing.ID,
		Email:  "other@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.Email, profile.Email)
	assert.Equal(t, 42, profile.RequestsUsed)
}

func TestProfileService_EnsureProfile_NoEmail(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.profileService().EnsureProfile(context.Background(), &dto.Identity{UserID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileService_EnsureProfile_EmailConflict(t *testing.T) {
	env := setupTestEnv(t)

	testutil.TestProfile(t, env.db, testutil.WithEmail("taken@example.com"))

	_, err := env.profileService().EnsureProfile(context.Background(), &dto.Identity{
		UserID: uuid.NewString(),
		Email:  "taken@example.com",
	})
	assert.ErrorIs(t, err, ErrProfileConflict)
}

func TestProfileService_GetProfile(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.profileService()

	now := time.Now()
	svc.now = func() time.Time { return now }

	profile := testutil.TestProfile(t, env.db,
		testutil.WithFullName("Jane"),
		testutil.WithRequestsUsed(7),
		testutil.WithBillingCycleStart(now.AddDate(0, 0, -29)),
	)
	testutil.TestAPIKey(t, env.db, profile.ID, model.ProviderOpenAI, "blob-1")
	testutil.TestAPIKey(t, env.db, profile.ID, model.ProviderGemini, "blob-2")

	resp, err := svc.GetProfile(context.Background(), &dto.Identity{UserID: profile.ID, Email: profile.Email})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resp.ID)
	assert.Equal(t, 7, resp.RequestsUsed)
	assert.Equal(t, 100, resp.RequestsLimit)
	assert.Equal(t, 1, resp.DaysUntilRenewal)
	require.NotNil(t, resp.FullName)
	assert.Equal(t, "Jane", *resp.FullName)

	require.Len(t, resp.APIKeys, 2)
	providers := []string{resp.APIKeys[0].Provider, resp.APIKeys[1].Provider}
	assert.ElementsMatch(t, []string{"openai", "gemini"}, providers)
}
