package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString 生成指定长度的随机字符串（字母数字混合）
// 使用 crypto/rand，可用于群邀请码等需要不可预测性的场景
func GetRandomString(length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GetNowAndLenRandomString 生成带时间戳前缀的随机字符串（用于 UUID）
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE1234567
func GetNowAndLenRandomString(length int) string {
	return time.Now().Format("060102") + GetRandomString(length)
}
