package utils

import (
	"errors"
	"fmt"
	"time"

	"digitalwill-backend/internal/types"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// sessionClaims JWT载荷
type sessionClaims struct {
	SessionID     string `json:"sid"`
	UserID        int64  `json:"uid"`
	WalletAddress string `json:"addr"`
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secret       []byte
	accessExpiry time.Duration
	now          func() time.Time
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secret string, accessExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:       []byte(secret),
		accessExpiry: accessExpiry,
		now:          time.Now,
	}
}

// GenerateToken 生成会话访问令牌
func (m *JWTManager) GenerateToken(sessionID string, userID int64, walletAddress string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.accessExpiry)

	claims := sessionClaims{
		SessionID:     sessionID,
		UserID:        userID,
		WalletAddress: walletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "digitalwill-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken 校验令牌
func (m *JWTManager) VerifyToken(tokenString string) (*types.JWTClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}

	return &types.JWTClaims{
		SessionID:     claims.SessionID,
		UserID:        claims.UserID,
		WalletAddress: claims.WalletAddress,
	}, nil
}
