// Package auth — выпуск и проверка JWT-токенов, хэширование паролей.
// Существующая, ничем не примечательная инфраструктура: API-слой
// использует её для извлечения user id из Authorization-заголовка.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL — срок жизни access-токена.
const defaultTokenTTL = 24 * time.Hour

// Ошибки проверки токена.
var (
	// ErrInvalidToken — токен не прошёл проверку подписи или формата.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken — срок жизни токена истёк.
	ErrExpiredToken = errors.New("token expired")
)

// TokenIssuer выпускает и проверяет подписанные HS256 токены.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer создаёт TokenIssuer.
// Секрет берётся из JWT_SECRET; ttl <= 0 означает 24 часа.
func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-do-not-use-in-production"
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает токен для пользователя.
func (t *TokenIssuer) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет токен и возвращает user id из subject.
func (t *TokenIssuer) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
