package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GoogleLogin 跳转到 Google 授权页
// GET /api/v1/auth/google?next=/dashboard
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := h.authService.GetGoogleAuthURL(c.Request.Context(), c.Query("next"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback Google 授权回调
// GET /api/v1/auth/google/callback?code=xxx&state=xxx
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if errMsg := c.Query("error"); errMsg != "" {
		response.AuthError(c, "授权被拒绝: "+errMsg)
		return
	}

	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	resp, err := h.authService.GoogleCallback(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
