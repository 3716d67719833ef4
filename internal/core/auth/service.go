// Package auth 提供帳號註冊、登入與存取權杖。
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credentials 註冊與登入的輸入
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Session 登入成功後回傳的權杖
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Service 帳號服務
type Service struct {
	store      *store.Store
	tokens     *TokenManager
	bcryptCost int
}

// NewService 創建新的帳號服務
func NewService(st *store.Store, tokens *TokenManager, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: st, tokens: tokens, bcryptCost: bcryptCost}
}

// Tokens 回傳權杖管理器
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register 建立帳號並回傳登入權杖，email 已存在時回傳衝突錯誤
func (s *Service) Register(ctx context.Context, creds Credentials) (*Session, error) {
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := common.ValidateStruct(creds); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: creds.Email, PasswordHash: string(hash)}
	err = s.store.Transaction(ctx, func(q *store.Queries) error {
		if _, err := q.FindUserByEmail(creds.Email); err == nil {
			return common.Conflict("email already registered")
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return q.CreateUser(user)
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("User registered", zap.Uint("user_id", user.ID))
	return s.session(user)
}

// Login 驗證密碼並簽發權杖
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	invalid := common.NewError(common.ErrCodeUnauthorized, "invalid email or password", http.StatusUnauthorized, nil)

	user, err := s.store.Queries(ctx).FindUserByEmail(creds.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		common.LogWarn("Login failed", zap.Uint("user_id", user.ID))
		return nil, invalid
	}
	return s.session(user)
}

// Authenticate 驗證權杖並確認使用者仍存在，回傳使用者 id
func (s *Service) Authenticate(ctx context.Context, token string) (uint, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return 0, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, common.NewError(common.ErrCodeUnauthorized, "invalid token subject", http.StatusUnauthorized, err)
	}
	if _, err := s.store.Queries(ctx).GetUser(userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, common.NewError(common.ErrCodeUnauthorized, "account no longer exists", http.StatusUnauthorized, nil)
		}
		return 0, err
	}
	return userID, nil
}

// DeleteAccount 刪除帳號與其所有資料
func (s *Service) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		return q.DeleteUser(userID)
	})
	if err != nil {
		return err
	}
	common.LogInfo("User deleted", zap.Uint("user_id", userID))
	return nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
