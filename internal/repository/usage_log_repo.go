package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/sheetsync_server/internal/model"
)

// StatusStat 按状态聚合的用量
type StatusStat struct {
	Status        string
	Count         int64
	RowsProcessed int64
}

type UsageLogRepository struct {
	db *gorm.DB
}

func NewUsageLogRepository(db *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UsageLogRepository) WithTx(tx *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: tx}
}

func (r *UsageLogRepository) Create(ctx context.Context, log *model.UsageLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListRecent 最近的用量记录
func (r *UsageLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.UsageLog, error) {
	var logs []model.UsageLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// StatsSince 统计 since 之后每种状态的次数与行数
func (r *UsageLogRepository) StatsSince(ctx context.Context, userID string, since time.Time) ([]StatusStat, error) {
	var stats []StatusStat
	err := r.db.WithContext(ctx).Model(&model.UsageLog{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(rows_processed), 0) AS rows_processed").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("status").
		Scan(&stats).Error
	return stats, err
}

// CountBetween 统计 [from, to) 区间的记录数
func (r *UsageLogRepository) CountBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageLog{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}
