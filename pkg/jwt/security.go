package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"whisper-wall/pkg/config"
	"whisper-wall/redis"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInBlacklist = errors.New("token已被加入黑名单")
)

// JWTConfig JWT配置
type JWTConfig struct {
	SigningKey     string
	AccessTokenTTL time.Duration
	Issuer         string
}

// ReviewerClaims 审核员token载荷。墙端匿名，只有审核员需要登录态。
type ReviewerClaims struct {
	UID int    `json:"uid"`
	JTI string `json:"jti"` // 黑名单用
	jwt.RegisteredClaims
}

// LoadJWTConfig 加载JWT配置，密钥必须注入且不短于32字符
func LoadJWTConfig() *JWTConfig {
	cfg := config.GetConfig().JWT

	if cfg.SigningKey == "" {
		log.Fatal("必须设置 JWT_SIGNING_KEY")
	}
	if len(cfg.SigningKey) < 32 {
		log.Fatal("JWT_SIGNING_KEY 长度不能少于32字符")
	}

	return &JWTConfig{
		SigningKey:     cfg.SigningKey,
		AccessTokenTTL: cfg.Expiry,
		Issuer:         cfg.Issuer,
	}
}

// GenerateSecureKey 生成256位随机密钥，部署时用tools/generate_keys生成
func GenerateSecureKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// SecureJWTManager 审核员token的签发与校验
type SecureJWTManager struct {
	config    *JWTConfig
	blacklist *TokenBlacklist
}

var (
	managerOnce sync.Once
	manager     *SecureJWTManager
)

// NewSecureJWTManager 获取JWT管理器，配置只加载一次
func NewSecureJWTManager() *SecureJWTManager {
	managerOnce.Do(func() {
		manager = &SecureJWTManager{
			config:    LoadJWTConfig(),
			blacklist: NewTokenBlacklist(),
		}
	})
	return manager
}

// GenerateToken 为审核员签发token
func (sjm *SecureJWTManager) GenerateToken(uid int) (string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := ReviewerClaims{
		UID: uid,
		JTI: jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sjm.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sjm.config.Issuer,
			Subject:   fmt.Sprintf("reviewer:%d", uid),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(sjm.config.SigningKey))
}

// ValidateToken 验证token并检查黑名单
func (sjm *SecureJWTManager) ValidateToken(tokenString string) (*ReviewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ReviewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名方法: %v", token.Header["alg"])
		}
		return []byte(sjm.config.SigningKey), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.New("token格式错误")
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errors.New("token已过期")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errors.New("token尚未激活")
		default:
			return nil, errors.New("token无效")
		}
	}

	claims, ok := token.Claims.(*ReviewerClaims)
	if !ok || !token.Valid {
		return nil, errors.New("token解析失败")
	}

	isBlacklisted, err := sjm.blacklist.IsBlacklisted(claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("检查黑名单失败: %v", err)
	}
	if isBlacklisted {
		return nil, ErrTokenInBlacklist
	}

	return claims, nil
}

// RevokeToken 撤销token，登出时调用
func (sjm *SecureJWTManager) RevokeToken(tokenString string) error {
	claims, err := sjm.ValidateToken(tokenString)
	if err != nil {
		return err
	}

	return sjm.blacklist.AddToBlacklist(claims.JTI, claims.ExpiresAt.Time)
}

// TokenBlacklist 已撤销token的Redis黑名单，TTL对齐token剩余有效期
type TokenBlacklist struct {
}

const (
	blacklistPrefix = "jwt_blacklist:"
)

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{}
}

// AddToBlacklist 把token加入黑名单
func (tb *TokenBlacklist) AddToBlacklist(tokenID string, expiry time.Time) error {
	duration := time.Until(expiry)
	if duration <= 0 {
		// 已过期的token不用进黑名单
		return nil
	}

	redisClient := redis.GetClient()
	if redisClient == nil {
		return errors.New("Redis客户端未初始化")
	}

	return redisClient.Set(context.Background(), blacklistPrefix+tokenID, "1", duration).Err()
}

// IsBlacklisted 检查token是否已被撤销
func (tb *TokenBlacklist) IsBlacklisted(tokenID string) (bool, error) {
	redisClient := redis.GetClient()
	if redisClient == nil {
		return false, errors.New("Redis客户端未初始化")
	}

	result := redisClient.Exists(context.Background(), blacklistPrefix+tokenID)
	return result.Val() > 0, result.Err()
}
