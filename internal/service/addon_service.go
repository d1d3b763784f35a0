package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/pubsub"
	"github.com/qs3c/sheetsync_server/internal/repository"
)

var (
	ErrMissingConnectToken = errors.New("missing connect token")
	ErrInvalidConnectToken = errors.New("invalid connect token")
)

// UsagePublisher 用量变化通知
type UsagePublisher interface {
	PublishUsage(ctx context.Context, msg *pubsub.UsageMessage) error
}

// AddonService 插件侧接口，通过连接 token 认证
type AddonService struct {
	profileRepo   *repository.ProfileRepository
	quotaService  *QuotaService
	apiKeyService *APIKeyService
	publisher     UsagePublisher
}

// NewAddonService publisher 可以为 nil
func NewAddonService(
	profileRepo *repository.ProfileRepository,
	quotaService *QuotaService,
	apiKeyService *APIKeyService,
	publisher UsagePublisher,
) *AddonService {
	return &AddonService{
		profileRepo:   profileRepo,
		quotaService:  quotaService,
		apiKeyService: apiKeyService,
		publisher:     publisher,
	}
}

// Authenticate 按连接 token 找到用户
func (s *AddonService) Authenticate(ctx context.Context, token string) (*model.Profile, error) {
	if token == "" {
		return nil, ErrMissingConnectToken
	}

	profile, err := s.profileRepo.GetByConnectToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidConnectToken
		}
		return nil, fmt.Errorf("get profile by connect token: %w", err)
	}
	return profile, nil
}

// RecordUsage 记录一次插件请求
func (s *AddonService) RecordUsage(ctx context.Context, req *dto.SyncRequest) (*dto.UsageSnapshot, error) {
	profile, err := s.Authenticate(ctx, req.ConnectToken)
	if err != nil {
		return nil, err
	}

	event := &dto.UsageEvent{
		Action:        req.Action,
		Provider:      req.Provider,
		Model:         req.Model,
		RowsProcessed: req.RowsProcessed,
		Status:        req.Status,
	}
	snapshot, err := s.quotaService.CheckAndRecord(ctx, profile.ID, event)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, profile.ID, event, snapshot)
	return snapshot, nil
}

func (s *AddonService) publish(ctx context.Context, userID string, event *dto.UsageEvent, snapshot *dto.UsageSnapshot) {
	if s.publisher == nil {
		return
	}

	action := event.Action
	if action == "" {
		action = model.DefaultUsageAction
	}
	err := s.publisher.PublishUsage(ctx, &pubsub.UsageMessage{
		UserID:    userID,
		Used:      snapshot.Used,
		Limit:     snapshot.Limit,
		Remaining: snapshot.Remaining,
		Action:    action,
		Status:    model.NormalizeUsageStatus(event.Status),
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("publish usage update failed")
	}
}

// FetchProfile 插件拉取用户资料与解密后的 Key
func (s *AddonService) FetchProfile(ctx context.Context, token string) (*dto.AddonProfile, error) {
	profile, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	keys, unreadable, err := s.apiKeyService.DecryptAll(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AddonProfile{
		ID:    profile.ID,
		Email: profile.Email,
		Plan:  profile.Plan,
		Usage: dto.UsageSnapshot{
			Used:      profile.RequestsUsed,
			Limit:     profile.RequestsLimit,
			Remaining: profile.Remaining(),
		},
		APIKeys:        keys,
		UnreadableKeys: unreadable,
	}, nil
}
