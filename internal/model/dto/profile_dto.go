package dto

import "time"

// ProfileResponse 用户详情
type ProfileResponse struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	FullName         *string          `json:"full_name"`
	AvatarURL        *string          `json:"avatar_url"`
	Plan             string           `json:"plan"`
	RequestsUsed     int              `json:"requests_used"`
	RequestsLimit    int              `json:"requests_limit"`
	DaysUntilRenewal int              `json:"days_until_renewal"`
	APIKeys          []StoredProvider `json:"api_keys"`
	CreatedAt        time.Time        `json:"created_at"`
}

// StoredProvider 已保存 Key 的提供方
type StoredProvider struct {
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// QuotaInfo 请求额度信息
type QuotaInfo struct {
	Plan              string    `json:"plan"`
	RequestsUsed      int       `json:"requests_used"`
	RequestsLimit     int       `json:"requests_limit"`
	Remaining         int       `json:"remaining"`
	BillingCycleStart time.Time `json:"billing_cycle_start"`
	DaysUntilRenewal  int       `json:"days_until_renewal"`
}

// ConnectTokenResponse 插件连接 token
type ConnectTokenResponse struct {
	Token string `json:"token"`
}
