package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/metrics"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

// AddonHandler Google Sheets 插件接口，使用连接 token 认证
type AddonHandler struct {
	addonService *service.AddonService
}

func NewAddonHandler(addonService *service.AddonService) *AddonHandler {
	return &AddonHandler{
		addonService: addonService,
	}
}

// Sync 上报一次用量
// POST /api/v1/addon/sync
func (h *AddonHandler) Sync(c *gin.Context) {
	// 空请求体按缺少连接 token 处理
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	snapshot, err := h.addonService.RecordUsage(c.Request.Context(), &req)
	if err != nil {
		metrics.SyncEvents.WithLabelValues(syncOutcome(err)).Inc()
		respondError(c, err)
		return
	}

	metrics.SyncEvents.WithLabelValues(metrics.OutcomeAccepted).Inc()
	response.Success(c, snapshot)
}

// Fetch 拉取用户资料与 API Key
// GET /api/v1/addon/sync?connectToken=xxx
func (h *AddonHandler) Fetch(c *gin.Context) {
	profile, err := h.addonService.FetchProfile(c.Request.Context(), c.Query("connectToken"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

func syncOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrQuotaExceeded):
		return metrics.OutcomeQuotaExceeded
	case errors.Is(err, service.ErrMissingConnectToken), errors.Is(err, service.ErrInvalidConnectToken):
		return metrics.OutcomeUnauthorized
	default:
		return metrics.OutcomeError
	}
}
