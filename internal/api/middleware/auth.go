package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/jwt"
	"github.com/qs3c/sheetsync_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetIdentity 从 token claims 构造登录身份
func GetIdentity(c *gin.Context) (*dto.Identity, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return nil, false
	}

	identity := &dto.Identity{UserID: userID}
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return identity, true
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		return identity, true
	}

	identity.Email = claims.Email
	meta := claims.UserMetadata
	if name := firstNonEmpty(meta.FullName, meta.Name); name != "" {
		identity.FullName = &name
	}
	if avatar := firstNonEmpty(meta.AvatarURL, meta.Picture); avatar != "" {
		identity.AvatarURL = &avatar
	}
	return identity, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
