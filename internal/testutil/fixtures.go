package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/internal/model"
)

// TestProfile 创建测试用户
func TestProfile(t *testing.T, db *gorm.DB, opts ...func(*model.Profile)) *model.Profile {
	t.Helper()

	id := uuid.NewString()
	profile := &model.Profile{
		ID:                id,
		Email:             fmt.Sprintf("test_%s@example.com", id[:8]),
		Plan:              model.PlanFree,
		RequestsUsed:      0,
		RequestsLimit:     100,
		BillingCycleStart: time.Now(),
	}

	for _, opt := range opts {
		opt(profile)
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return profile
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.Email = email
	}
}

// WithFullName 设置姓名
func WithFullName(name string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.FullName = &name
	}
}

// WithPlan 设置套餐和额度
func WithPlan(plan string, limit int) func(*model.Profile) {
	return func(p *model.Profile) {
		p.Plan = plan
		p.RequestsLimit = limit
	}
}

// WithRequestsUsed 设置已使用次数
func WithRequestsUsed(used int) func(*model.Profile) {
	return func(p *model.Profile) {
		p.RequestsUsed = used
	}
}

// WithBillingCycleStart 设置计费周期开始时间
func WithBillingCycleStart(start time.Time) func(*model.Profile) {
	return func(p *model.Profile) {
		p.BillingCycleStart = start
	}
}

// WithConnectToken 设置连接 token
func WithConnectToken(token string) func(*model.Profile) {
	return func(p *model.Profile) {
		p.ConnectToken = &token
	}
}

// TestAPIKey 创建测试 API Key（encryptedKey 原样写入）
func TestAPIKey(t *testing.T, db *gorm.DB, userID string, provider model.Provider, encryptedKey string) *model.APIKey {
	t.Helper()

	key := &model.APIKey{
		UserID:       userID,
		Provider:     provider,
		EncryptedKey: encryptedKey,
	}

	if err := db.Create(key).Error; err != nil {
		t.Fatalf("Failed to create test api key: %v", err)
	}

	return key
}

// TestUsageLog 创建测试用量记录
func TestUsageLog(t *testing.T, db *gorm.DB, userID string, opts ...func(*model.UsageLog)) *model.UsageLog {
	t.Helper()

	log := &model.UsageLog{
		UserID:        userID,
		Action:        model.DefaultUsageAction,
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		RowsProcessed: 1,
		Status:        model.UsageStatusSuccess,
	}

	for _, opt := range opts {
		opt(log)
	}

	if err := db.Create(log).Error; err != nil {
		t.Fatalf("Failed to create test usage log: %v", err)
	}

	return log
}

// WithStatus 设置用量状态
func WithStatus(status string) func(*model.UsageLog) {
	return func(l *model.UsageLog) {
		l.Status = status
	}
}

// WithRows 设置处理行数
func WithRows(rows int) func(*model.UsageLog) {
	return func(l *model.UsageLog) {
		l.RowsProcessed = rows
	}
}

// WithCreatedAt 设置创建时间
func WithCreatedAt(at time.Time) func(*model.UsageLog) {
	return func(l *model.UsageLog) {
		l.CreatedAt = at
	}
}
