package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/pubsub"
	"github.com/qs3c/sheetsync_server/internal/testutil"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*pubsub.UsageMessage
	err      error
}

func (p *fakePublisher) PublishUsage(_ context.Context, msg *pubsub.UsageMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return p.err
}

func newTestAddonService(env *testEnv, publisher UsagePublisher) *AddonService {
	return NewAddonService(env.profileRepo, env.quotaService(), env.apiKeyService(), publisher)
}

func TestAddonService_RecordUsage(t *testing.T) {
	env := setupTestEnv(t)
	publisher := &fakePublisher{}
	svc := newTestAddonService(env, publisher)

	profile := testutil.TestProfile(t, env.db, testutil.WithConnectToken("tok-123"), testutil.WithRequestsUsed(10))

	snapshot, err := svc.RecordUsage(context.Background(), &dto.SyncRequest{
		ConnectToken:  "tok-123",
		Action:        "Translate",
		Provider:      "gemini",
		Model:         "gemini-1.5-flash",
		RowsProcessed: 40,
		Status:        "success",
	})
	require.NoError(t, err)
	assert.Equal(t, &dto.UsageSnapshot{Used: 11, Limit: 100, Remaining: 89}, snapshot)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, profile.ID, msg.UserID)
	assert.Equal(t, 11, msg.Used)
	assert.Equal(t, "Translate", msg.Action)
	assert.Equal(t, model.UsageStatusSuccess, msg.Status)
}

func TestAddonService_RecordUsage_Auth(t *testing.T) {
	env := setupTestEnv(t)
	svc := newTestAddonService(env, nil)
	ctx := context.Background()

	testutil.TestProfile(t, env.db, testutil.WithConnectToken("tok-123"))

	_, err := svc.RecordUsage(ctx, &dto.SyncRequest{})
	assert.ErrorIs(t, err, ErrMissingConnectToken)

	_, err = svc.RecordUsage(ctx, &dto.SyncRequest{ConnectToken: "nope"})
	assert.ErrorIs(t, err, ErrInvalidConnectToken)
}

func TestAddonService_RecordUsage_QuotaExceeded(t *testing.T) {
	env := setupTestEnv(t)
	publisher := &fakePublisher{}
	svc := newTestAddonService(env, publisher)

	testutil.TestProfile(t, env.db, testutil.WithConnectToken("tok-full"), testutil.WithRequestsUsed(100))

	_, err := svc.RecordUsage(context.Background(), &dto.SyncRequest{ConnectToken: "tok-full"})
	var exceeded *QuotaExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 100, exceeded.Used)
	assert.Empty(t, publisher.messages)
}

func TestAddonService_RecordUsage_PublishFailureIgnored(t *testing.T) {
	env := setupTestEnv(t)
	svc := newTestAddonService(env, &fakePublisher{err: errors.New("redis down")})

	testutil.TestProfile(t, env.db, testutil.WithConnectToken("tok-123"))

	snapshot, err := svc.RecordUsage(context.Background(), &dto.SyncRequest{ConnectToken: "tok-123"})
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Used)
}

func TestAddonService_FetchProfile(t *testing.T) {
	env := setupTestEnv(t)
	svc := newTestAddonService(env, nil)
	ctx := context.Background()

	profile := testutil.TestProfile(t, env.db,
		testutil.WithConnectToken("tok-abc"),
		testutil.WithPlan(model.PlanPro, 1000),
		testutil.WithRequestsUsed(300),
	)
	_, err := env.apiKeyService().Save(ctx, profile.ID, "openai", "sk-live-openai")
	require.NoError(t, err)
	testutil.TestAPIKey(t, env.db, profile.ID, model.ProviderAnthropic, "00:11:22")

	resp, err := svc.FetchProfile(ctx, "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resp.ID)
	assert.Equal(t, model.PlanPro, resp.Plan)
	assert.Equal(t, dto.UsageSnapshot{Used: 300, Limit: 1000, Remaining: 700}, resp.Usage)
	assert.Equal(t, map[string]string{"openai": "sk-live-openai"}, resp.APIKeys)
	assert.Equal(t, []string{"anthropic"}, resp.UnreadableKeys)
}

func TestAddonService_FetchProfile_Auth(t *testing.T) {
	env := setupTestEnv(t)
	svc := newTestAddonService(env, nil)

	_, err := svc.FetchProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingConnectToken)

	_, err = svc.FetchProfile(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidConnectToken)
}
