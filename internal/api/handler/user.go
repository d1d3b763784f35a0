package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/api/middleware"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

type UserHandler struct {
	profileService *service.ProfileService
	quotaService   *service.QuotaService
	usageService   *service.UsageService
}

func NewUserHandler(
	profileService *service.ProfileService,
	quotaService *service.QuotaService,
	usageService *service.UsageService,
) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		quotaService:   quotaService,
		usageService:   usageService,
	}
}

// GetProfile 获取当前用户信息，首次访问时创建
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

// GetQuota 套餐额度与续期天数
// GET /api/v1/user/quota
func (h *UserHandler) GetQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.quotaService.GetQuotaInfo(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// GetUsage 用量记录与本月统计
// GET /api/v1/user/usage
func (h *UserHandler) GetUsage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	report, err := h.usageService.GetReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, report)
}
