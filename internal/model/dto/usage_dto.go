package dto

import "time"

// UsageEvent 插件上报的一次用量
type UsageEvent struct {
	Action        string
	Provider      string
	Model         string
	RowsProcessed int
	Status        string
}

// UsageSnapshot 用量快照
type UsageSnapshot struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// UsageLogItem 用量记录
type UsageLogItem struct {
	ID            int64     `json:"id"`
	Action        string    `json:"action"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	RowsProcessed int       `json:"rows_processed"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// MonthlyStats 本月统计
type MonthlyStats struct {
	Total         int64 `json:"total"`
	Success       int64 `json:"success"`
	Failed        int64 `json:"failed"`
	RowsProcessed int64 `json:"rows_processed"`
	PercentChange int64 `json:"percent_change"`
}

// UsageReport 用量报表
type UsageReport struct {
	Recent []UsageLogItem `json:"recent"`
	Month  MonthlyStats   `json:"month"`
}
