package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/sheetsync_server/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByConnectToken(ctx context.Context, token string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("connect_token = ?", token).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfAbsent 插入用户，已存在时不做任何修改，返回库中的记录
func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(profile).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, profile.ID)
}

// IncrementUsageIfBelowLimit 未达上限时 requests_used + 1，返回是否成功
func (r *ProfileRepository) IncrementUsageIfBelowLimit(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND requests_used < requests_limit", id).
		Update("requests_used", gorm.Expr("requests_used + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetConnectTokenIfNull 仅在 token 为空时写入，返回是否写入
func (r *ProfileRepository) SetConnectTokenIfNull(ctx context.Context, id, token string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND (connect_token IS NULL OR connect_token = '')", id).
		Update("connect_token", token)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateConnectToken 无条件替换 token
func (r *ProfileRepository) UpdateConnectToken(ctx context.Context, id, token string) error {
	result := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("connect_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountExpiredCycles 周期开始时间不晚于 cutoff 的用户数
func (r *ProfileRepository) CountExpiredCycles(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("billing_cycle_start <= ?", cutoff).
		Count(&count).Error
	return count, err
}

// ResetExpiredCycles 周期开始时间不晚于 cutoff 的用户重置用量，周期从 now 重新开始
func (r *ProfileRepository) ResetExpiredCycles(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("billing_cycle_start <= ?", cutoff).
		Updates(map[string]interface{}{
			"requests_used":       0,
			"billing_cycle_start": now,
		})
	return result.RowsAffected, result.Error
}

// UpdatePlan 修改套餐与额度
func (r *ProfileRepository) UpdatePlan(ctx context.Context, id, plan string, limit int) error {
	result := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan":           plan,
			"requests_limit": limit,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL 值未变化时 RowsAffected 为 0
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
