package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// RandomToken 返回 n 字节随机数的十六进制表示
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// TokensEqual 常量时间比较，空串视为不相等
func TokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
