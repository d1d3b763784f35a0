package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
	"github.com/qs3c/sheetsync_server/internal/service"
)

// respondError 把 service 错误映射为响应，未知错误记录日志后返回通用 500
func respondError(c *gin.Context, err error) {
	var exceeded *service.QuotaExceededError
	switch {
	case errors.As(err, &exceeded):
		response.QuotaError(c, service.ErrQuotaExceeded.Error(), dto.QuotaExceededData{
			Limit: exceeded.Limit,
			Used:  exceeded.Used,
		})
	case errors.Is(err, service.ErrMissingConnectToken),
		errors.Is(err, service.ErrInvalidConnectToken),
		errors.Is(err, service.ErrInvalidOAuthState):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrOAuthFailed):
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("oauth login failed")
		response.AuthError(c, service.ErrOAuthFailed.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAPIKeyNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidProvider),
		errors.Is(err, service.ErrEmptyAPIKey),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrEmailMissing),
		errors.Is(err, service.ErrProfileConflict):
		response.ParamError(c, err.Error())
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.ServerError(c, "")
	}
}

const msgBadRequestBody = "请求参数格式错误"

// bindError 请求体解析失败，细节只写日志
func bindError(c *gin.Context, err error) {
	log.Ctx(c.Request.Context()).Debug().Err(err).Str("path", c.FullPath()).Msg("bind request body failed")
	response.ParamError(c, msgBadRequestBody)
}
