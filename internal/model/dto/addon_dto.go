package dto

// 插件接口沿用插件端的 camelCase 字段

// SyncRequest 插件上报用量
type SyncRequest struct {
	ConnectToken  string `json:"connectToken"`
	Action        string `json:"action"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	RowsProcessed int    `json:"rowsProcessed"`
	Status        string `json:"status"`
}

// QuotaExceededData 额度用完时返回
type QuotaExceededData struct {
	Limit int `json:"limit"`
	Used  int `json:"used"`
}

// AddonProfile 插件拉取的用户信息与明文 Key
type AddonProfile struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	Plan           string            `json:"plan"`
	Usage          UsageSnapshot     `json:"usage"`
	APIKeys        map[string]string `json:"apiKeys"`
	UnreadableKeys []string          `json:"unreadableKeys"`
}
