package middleware

import (
	"errors"
	"strings"

	"whisper-wall/pkg/jwt"
	"whisper-wall/pkg/response"
	"whisper-wall/pkg/security"

	"github.com/gin-gonic/gin"
)

// SecureJWTAuth 审核后台的JWT认证中间件
func SecureJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := getSecureTokenFromRequest(c)
		if token == "" {
			response.Abort(c, response.AUTH_ERROR, "请求未携带token，无权限访问")
			return
		}

		if err := security.ValidateInput(token); err != nil {
			response.Abort(c, response.AUTH_ERROR, "token包含非法字符")
			return
		}

		claims, err := jwt.NewSecureJWTManager().ValidateToken(token)
		if err != nil {
			message := err.Error()
			if errors.Is(err, jwt.ErrTokenInBlacklist) {
				message = "token已被撤销"
			}
			response.Abort(c, response.AUTH_ERROR, message)
			return
		}

		// 审核员信息放入上下文
		c.Set("uid", claims.UID)
		c.Set("jti", claims.JTI)
		c.Set("claims", claims)

		c.Next()
	}
}

// getSecureTokenFromRequest 从请求中获取token
func getSecureTokenFromRequest(c *gin.Context) string {
	// 1. 从Authorization header获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		// Bearer token格式
		if len(authHeader) > 7 && strings.ToLower(authHeader[:7]) == "bearer " {
			return authHeader[7:]
		}
		return authHeader
	}

	// 2. 从查询参数获取
	if token := c.Query("token"); token != "" {
		return token
	}

	// 3. 从表单参数获取
	if token := c.PostForm("token"); token != "" {
		return token
	}

	return ""
}
