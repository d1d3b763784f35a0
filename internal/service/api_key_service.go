package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/keycipher"
	"github.com/qs3c/sheetsync_server/internal/pkg/metrics"
	"github.com/qs3c/sheetsync_server/internal/repository"
)

var (
	ErrInvalidProvider = errors.New("不支持的服务提供方")
	ErrEmptyAPIKey     = errors.New("API Key 不能为空")
	ErrAPIKeyNotFound  = errors.New("该服务提供方没有保存 API Key")
)

type APIKeyService struct {
	apiKeyRepo  *repository.APIKeyRepository
	profileRepo *repository.ProfileRepository
	cipher      *keycipher.Cipher
}

func NewAPIKeyService(apiKeyRepo *repository.APIKeyRepository, profileRepo *repository.ProfileRepository, cipher *keycipher.Cipher) *APIKeyService {
	return &APIKeyService{
		apiKeyRepo:  apiKeyRepo,
		profileRepo: profileRepo,
		cipher:      cipher,
	}
}

// Save 加密并保存 API Key，同一提供方只保留一条
func (s *APIKeyService) Save(ctx context.Context, userID, providerName, apiKey string) (*dto.APIKeyInfo, error) {
	provider, ok := model.ParseProvider(providerName)
	if !ok {
		return nil, ErrInvalidProvider
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if _, err := getProfile(ctx, s.profileRepo, userID); err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt api key: %w", err)
	}

	key, err := s.apiKeyRepo.Upsert(ctx, &model.APIKey{
		UserID:       userID,
		Provider:     provider,
		EncryptedKey: encrypted,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert api key: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", userID).Str("provider", string(provider)).Msg("api key saved")
	return &dto.APIKeyInfo{
		ID:        key.ID,
		Provider:  string(key.Provider),
		MaskedKey: keycipher.Mask(apiKey),
		Readable:  true,
		CreatedAt: key.CreatedAt,
		UpdatedAt: key.UpdatedAt,
	}, nil
}

// List 列出掩码后的 API Key，无法解密的 Key 标记为不可读
func (s *APIKeyService) List(ctx context.Context, userID string) ([]dto.APIKeyInfo, error) {
	keys, err := s.apiKeyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	items := make([]dto.APIKeyInfo, 0, len(keys))
	for _, k := range keys {
		item := dto.APIKeyInfo{
			ID:        k.ID,
			Provider:  string(k.Provider),
			CreatedAt: k.CreatedAt,
			UpdatedAt: k.UpdatedAt,
		}
		if plain := s.decrypt(ctx, &k); plain.OK() {
			item.MaskedKey = keycipher.Mask(plain.Value)
			item.Readable = true
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete 删除指定提供方的 Key
func (s *APIKeyService) Delete(ctx context.Context, userID, providerName string) error {
	provider, ok := model.ParseProvider(providerName)
	if !ok {
		return ErrInvalidProvider
	}

	n, err := s.apiKeyRepo.Delete(ctx, userID, provider)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if n == 0 {
		return ErrAPIKeyNotFound
	}

	log.Ctx(ctx).Info().Str("user_id", userID).Str("provider", string(provider)).Msg("api key deleted")
	return nil
}

// DecryptAll 解密用户的全部 Key
// 返回 provider -> 明文，以及无法解密的 provider 列表
func (s *APIKeyService) DecryptAll(ctx context.Context, userID string) (map[string]string, []string, error) {
	keys, err := s.apiKeyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list api keys: %w", err)
	}

	plain := make(map[string]string, len(keys))
	unreadable := make([]string, 0)
	for _, k := range keys {
		d := s.decrypt(ctx, &k)
		if !d.OK() {
			unreadable = append(unreadable, string(k.Provider))
			continue
		}
		plain[string(k.Provider)] = d.Value
	}
	return plain, unreadable, nil
}

func (s *APIKeyService) decrypt(ctx context.Context, k *model.APIKey) keycipher.Decrypted {
	d := s.cipher.Decrypt(k.EncryptedKey)
	if !d.OK() {
		metrics.DecryptFailures.Inc()
		log.Ctx(ctx).Warn().Str("user_id", k.UserID).Str("provider", string(k.Provider)).Msg("stored api key is unreadable")
	}
	return d
}
