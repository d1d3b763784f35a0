package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/sheetsync_server/internal/model"
)

type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Upsert 按 (user_id, provider) 插入或覆盖密文
func (r *APIKeyRepository) Upsert(ctx context.Context, key *model.APIKey) (*model.APIKey, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"encrypted_key", "updated_at"}),
		}).
		Create(key).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndProvider(ctx, key.UserID, key.Provider)
}

func (r *APIKeyRepository) GetByUserAndProvider(ctx context.Context, userID string, provider model.Provider) (*model.APIKey, error) {
	var key model.APIKey
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&keys).Error
	return keys, err
}

// Delete 删除指定提供方的 Key，返回删除行数
func (r *APIKeyRepository) Delete(ctx context.Context, userID string, provider model.Provider) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&model.APIKey{})
	return result.RowsAffected, result.Error
}
