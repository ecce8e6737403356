package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthStateClaims OAuth state 参数，nonce 同时保存在发起登录的会话中
type OAuthStateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

func GenerateOAuthState(nonce, secret string, expiration time.Duration) (string, error) {
	claims := &OAuthStateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseOAuthState(tokenString, secret string) (*OAuthStateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OAuthStateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OAuthStateClaims); ok && token.Valid && claims.Nonce != "" {
		return claims, nil
	}

	return nil, errors.New("invalid oauth state claims")
}
