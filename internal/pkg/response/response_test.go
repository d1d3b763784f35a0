package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSuccess(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Success(c, gin.H{"key": "value"})
	})

	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", data["key"])
}

func TestSuccess_NilData(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Success(c, nil)
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		SuccessWithMessage(c, "保存成功", gin.H{"result": true})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "保存成功", resp.Message)
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		write       func(c *gin.Context)
		wantStatus  int
		wantCode    int
		wantMessage string
	}{
		{
			name:        "param error default message",
			write:       func(c *gin.Context) { ParamError(c, "") },
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeParamError,
			wantMessage: "参数错误",
		},
		{
			name:        "auth error custom message",
			write:       func(c *gin.Context) { AuthError(c, "invalid connect token") },
			wantStatus:  http.StatusUnauthorized,
			wantCode:    CodeAuthFailed,
			wantMessage: "invalid connect token",
		},
		{
			name:        "not found",
			write:       func(c *gin.Context) { NotFoundError(c, "") },
			wantStatus:  http.StatusNotFound,
			wantCode:    CodeResourceNotFound,
			wantMessage: "资源不存在",
		},
		{
			name:        "quota",
			write:       func(c *gin.Context) { QuotaError(c, "", nil) },
			wantStatus:  http.StatusTooManyRequests,
			wantCode:    CodeQuotaExceeded,
			wantMessage: "请求额度已用完",
		},
		{
			name:        "server error",
			write:       func(c *gin.Context) { ServerError(c, "") },
			wantStatus:  http.StatusInternalServerError,
			wantCode:    CodeServerError,
			wantMessage: "服务器内部错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.write)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestQuotaError_WithData(t *testing.T) {
	w := serve(func(c *gin.Context) {
		QuotaError(c, "limit reached", gin.H{"limit": 100, "used": 100})
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, CodeQuotaExceeded, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(100), data["limit"])
	assert.Equal(t, float64(100), data["used"])
}

func TestError_UnknownCode(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, 9999, "")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 9999, resp.Code)
	assert.Empty(t, resp.Message)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(CodeSuccess))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(CodeQuotaExceeded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(-1))
}
