package dto

import "time"

// SaveAPIKeyRequest 保存 API Key
type SaveAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

// DeleteAPIKeyRequest 删除 API Key
type DeleteAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// APIKeyInfo 掩码后的 API Key
type APIKeyInfo struct {
	ID        int64     `json:"id"`
	Provider  string    `json:"provider"`
	MaskedKey string    `json:"masked_key"`
	Readable  bool      `json:"readable"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
