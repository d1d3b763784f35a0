package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/api/middleware"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

type ConnectTokenHandler struct {
	connectTokenService *service.ConnectTokenService
}

func NewConnectTokenHandler(connectTokenService *service.ConnectTokenService) *ConnectTokenHandler {
	return &ConnectTokenHandler{
		connectTokenService: connectTokenService,
	}
}

// Get 获取连接 token，没有时生成
// GET /api/v1/user/connect-token
func (h *ConnectTokenHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	token, err := h.connectTokenService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.ConnectTokenResponse{Token: token})
}

// Regenerate 重新生成连接 token
// POST /api/v1/user/connect-token
func (h *ConnectTokenHandler) Regenerate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	token, err := h.connectTokenService.Regenerate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已重新生成，旧 token 已失效", dto.ConnectTokenResponse{Token: token})
}
