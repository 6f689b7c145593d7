package session

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

// sessionSecret 会话签名密钥。
// 多实例部署必须通过 SESSION_SECRET 固定，否则实例间会话互不认。
func sessionSecret() string {
	if secret := os.Getenv("SESSION_SECRET"); len(secret) >= 32 {
		return secret
	}

	log.Printf("SESSION_SECRET 未设置或过短，使用随机密钥（重启后会话失效）")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatal("生成会话密钥失败:", err)
	}
	return hex.EncodeToString(key)
}

// sessionKeyPairs securecookie编解码密钥对。至少要有一对，
// 否则store没有codec，会话值根本写不进去
func sessionKeyPairs() [][]byte {
	return [][]byte{[]byte(sessionSecret())}
}

// InitSecureSession 初始化Redis会话存储，用于验证码等短期状态。
// NewStore的第4个参数是Redis用户名（ACL），默认部署不用，传空串
func InitSecureSession(r *gin.Engine, redisAddr, redisPassword string) {
	store, err := redis.NewStore(10, "tcp", redisAddr, "", redisPassword, sessionKeyPairs()...)
	if err != nil {
		log.Fatal("创建会话存储失败:", err)
	}

	store.Options(sessions.Options{
		MaxAge:   3600,
		Secure:   gin.Mode() == gin.ReleaseMode,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	r.Use(sessions.Sessions("whisper_session", store))
}

// SecureCaptchaMiddleware 验证码会话中间件，验证码5分钟过期
func SecureCaptchaMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		session.Options(sessions.Options{
			MaxAge:   300,
			Secure:   gin.Mode() == gin.ReleaseMode,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		c.Next()
	}
}
