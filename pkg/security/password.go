package security

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// 审核员账号是内部账号，数量少，成本可以开高一些
const bcryptCost = 14

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash 验证密码
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength 验证密码强度
func ValidatePasswordStrength(password string) error {
	if len(password) < 6 {
		return errors.New("密码长度不能少于6位")
	}
	if len(password) > 32 {
		return errors.New("密码长度不能超过32位")
	}
	return nil
}

// 常见SQL注入特征
var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\s*(union|select|insert|update|delete|drop|create|alter|exec|execute)\s+)`),
	regexp.MustCompile(`(?i)(\s*(or|and)\s+\d+\s*=\s*\d+)`),
	regexp.MustCompile(`(?i)(\s*['";](\s*--|\s*/\*))`),
	regexp.MustCompile(`(?i)(\s*'\s*(or|and)\s*'[^']*'\s*=\s*'[^']*')`),
}

// ValidateInput 拦截带SQL注入特征的输入，用于用户名、token等短字段
func ValidateInput(input string) error {
	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(input) {
			return errors.New("输入包含不安全的字符")
		}
	}
	return nil
}
