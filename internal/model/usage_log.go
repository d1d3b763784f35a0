package model

import (
	"time"
)

// 用量记录状态
const (
	UsageStatusSuccess = "success"
	UsageStatusFailed  = "failed"
)

// 用量事件缺省值
const (
	DefaultUsageAction = "AI Request"
	UnknownValue       = "unknown"
)

// NormalizeUsageStatus 只有 success 保持原样，其余一律记为 failed
func NormalizeUsageStatus(status string) string {
	if status == UsageStatusSuccess {
		return UsageStatusSuccess
	}
	return UsageStatusFailed
}

type UsageLog struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:36;not null;index:idx_usage_logs_user_created" json:"user_id"`
	Action        string    `gorm:"size:100;not null" json:"action"`
	Provider      string    `gorm:"size:50;not null" json:"provider"`
	Model         string    `gorm:"size:100;not null" json:"model"`
	RowsProcessed int       `gorm:"default:0;not null" json:"rows_processed"`
	Status        string    `gorm:"size:20;not null" json:"status"`
	CreatedAt     time.Time `gorm:"index:idx_usage_logs_user_created" json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}
