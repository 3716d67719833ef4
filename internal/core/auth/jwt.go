package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ecocook/internal/pkg/common"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 存取權杖的聲明
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID 從 subject 取出使用者 id
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// TokenManager 簽發與驗證 HS256 權杖
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager 創建新的權杖管理器
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Generate 為使用者簽發權杖，回傳權杖與到期時間
func (m *TokenManager) Generate(userID uint, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate 驗證權杖並回傳聲明，失敗時回傳 common.ErrUnauthorized
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, common.NewError(common.ErrCodeUnauthorized, "invalid or expired token", http.StatusUnauthorized, err)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, common.NewError(common.ErrCodeUnauthorized, "invalid token subject", http.StatusUnauthorized, err)
	}
	return claims, nil
}
