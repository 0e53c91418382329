package auth

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

// BaseValidator проверяет токены админской поверхности (правила, аудит).
// Ключевая пара асимметричная: сервис, выдающий токены, держит приватный
// ключ, валидатору достаточно публичного.
type BaseValidator struct {
	publicKey *rsa.PublicKey
}

func NewBaseValidator(pubKey *rsa.PublicKey) *BaseValidator {
	return &BaseValidator{publicKey: pubKey}
}

// VerifyToken разбирает и проверяет RS256-токен из заголовка Authorization.
// Алгоритм фиксирован: токен с любым другим alg (включая none) отклоняется
// до проверки подписи.
func (v *BaseValidator) VerifyToken(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &domain.CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("auth: token rejected: %w", err)
	}

	claims, ok := token.Claims.(*domain.CustomClaims)
	if !ok {
		return nil, fmt.Errorf("auth: token carries unexpected claims type")
	}

	return claims, nil
}

// ParseRSAPublicKey разбирает PEM с публичным ключом (проверка подписи)
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("auth: public key is not configured")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("auth: bad public key PEM: %w", err)
	}
	return key, nil
}

// ParseRSAPrivateKey разбирает PEM с приватным ключом (подпись токенов при логине)
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("auth: private key is not configured")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("auth: bad private key PEM: %w", err)
	}
	return key, nil
}
