package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/sheetsync_server/internal/repository"
)

// 连接 token 长度（hex 字符数）
const connectTokenLength = 32

type ConnectTokenService struct {
	profileRepo *repository.ProfileRepository
}

func NewConnectTokenService(profileRepo *repository.ProfileRepository) *ConnectTokenService {
	return &ConnectTokenService{
		profileRepo: profileRepo,
	}
}

// GetOrCreate 获取连接 token，没有时生成
// 并发的首次调用都会拿到同一个 token
func (s *ConnectTokenService) GetOrCreate(ctx context.Context, userID string) (string, error) {
	profile, err := getProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return "", err
	}
	if profile.ConnectToken != nil && *profile.ConnectToken != "" {
		return *profile.ConnectToken, nil
	}

	token, err := generateRandomCode(connectTokenLength)
	if err != nil {
		return "", err
	}

	if _, err := s.profileRepo.SetConnectTokenIfNull(ctx, userID, token); err != nil {
		return "", fmt.Errorf("set connect token: %w", err)
	}

	profile, err = getProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return "", err
	}
	if profile.ConnectToken == nil {
		return "", fmt.Errorf("connect token missing after set for user %s", userID)
	}
	return *profile.ConnectToken, nil
}

// Regenerate 重新生成连接 token，旧 token 立即失效
func (s *ConnectTokenService) Regenerate(ctx context.Context, userID string) (string, error) {
	if _, err := getProfile(ctx, s.profileRepo, userID); err != nil {
		return "", err
	}

	token, err := generateRandomCode(connectTokenLength)
	if err != nil {
		return "", err
	}

	if err := s.profileRepo.UpdateConnectToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("update connect token: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", userID).Msg("connect token regenerated")
	return token, nil
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
