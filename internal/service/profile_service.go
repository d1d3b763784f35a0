package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/repository"
)

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrProfileConflict = errors.New("邮箱已被其他账号使用")
)

type ProfileService struct {
	profileRepo *repository.ProfileRepository
	apiKeyRepo  *repository.APIKeyRepository
	cfg         *config.Config
	now         func() time.Time
}

func NewProfileService(profileRepo *repository.ProfileRepository, apiKeyRepo *repository.APIKeyRepository, cfg *config.Config) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		apiKeyRepo:  apiKeyRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// EnsureProfile 获取用户，不存在时按登录身份创建
func (s *ProfileService) EnsureProfile(ctx context.Context, identity *dto.Identity) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if identity.Email == "" {
		return nil, ErrUserNotFound
	}

	profile, err = s.profileRepo.CreateIfAbsent(ctx, &model.Profile{
		ID:                identity.UserID,
		Email:             identity.Email,
		FullName:          identity.FullName,
		AvatarURL:         identity.AvatarURL,
		Plan:              model.PlanFree,
		RequestsUsed:      0,
		RequestsLimit:     s.cfg.RequestsLimit(model.PlanFree),
		BillingCycleStart: s.now(),
	})
	if err != nil {
		// 插入被其他唯一键（邮箱）挡住时读不到该 ID
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileConflict
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", profile.ID).Msg("profile ready")
	return profile, nil
}

// GetProfile 获取用户详情
func (s *ProfileService) GetProfile(ctx context.Context, identity *dto.Identity) (*dto.ProfileResponse, error) {
	profile, err := s.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	keys, err := s.apiKeyRepo.ListByUser(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	providers := make([]dto.StoredProvider, 0, len(keys))
	for _, k := range keys {
		providers = append(providers, dto.StoredProvider{
			Provider:  string(k.Provider),
			CreatedAt: k.CreatedAt,
		})
	}

	return &dto.ProfileResponse{
		ID:               profile.ID,
		Email:            profile.Email,
		FullName:         profile.FullName,
		AvatarURL:        profile.AvatarURL,
		Plan:             profile.Plan,
		RequestsUsed:     profile.RequestsUsed,
		RequestsLimit:    profile.RequestsLimit,
		DaysUntilRenewal: profile.DaysUntilRenewal(s.now()),
		APIKeys:          providers,
		CreatedAt:        profile.CreatedAt,
	}, nil
}

// getProfile 按 ID 读取，不存在时返回 ErrUserNotFound
func getProfile(ctx context.Context, repo *repository.ProfileRepository, userID string) (*model.Profile, error) {
	profile, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}
