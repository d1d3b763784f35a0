package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/api/middleware"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

type APIKeyHandler struct {
	apiKeyService *service.APIKeyService
}

func NewAPIKeyHandler(apiKeyService *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// List 列出已保存的 Key（掩码）
// GET /api/v1/user/api-keys
func (h *APIKeyHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	keys, err := h.apiKeyService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"api_keys": keys})
}

// Save 保存或替换 Key
// POST /api/v1/user/api-keys
func (h *APIKeyHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SaveAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	info, err := h.apiKeyService.Save(c.Request.Context(), userID, req.Provider, req.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "保存成功", info)
}

// Delete 删除 Key
// DELETE /api/v1/user/api-keys
func (h *APIKeyHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.DeleteAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.apiKeyService.Delete(c.Request.Context(), userID, req.Provider); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
