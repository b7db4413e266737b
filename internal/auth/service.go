// Package auth はメール/パスワード認証とOAuth認証フロー、ベアラートークン
// セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/unihouse/api/internal/model"
	"github.com/unihouse/api/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       model.Provider
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// GoogleとKakaoの2プロバイダーが実装する。
type OAuthProvider interface {
	// Provider は認証経路識別子を返す。
	Provider() model.Provider
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	providers   map[model.Provider]OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	providers []OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	m := make(map[model.Provider]OAuthProvider, len(providers))
	for _, p := range providers {
		m[p.Provider()] = p
	}
	return &Service{
		providers:   m,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// GetLoginURL は指定プロバイダーのOAuth認証URLを生成する。
// 未対応のプロバイダー（emailを含む）の場合はエラーを返す。
func (s *Service) GetLoginURL(provider model.Provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", model.NewUnknownProviderError(string(provider))
	}
	return p.GetLoginURL(state), nil
}

// SignUp はメールアドレスとパスワードで新規ユーザーを登録し、セッションを発行する。
// パスワードは6文字以上。メールアドレスが既に登録済みの場合はエラーを返す。
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*model.Session, error) {
	if len(password) < MinPasswordLength {
		return nil, model.NewWeakPasswordError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUser.ID,
		Provider:       model.ProviderEmail,
		ProviderUserID: email,
		PasswordHash:   hash,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
		return nil, fmt.Errorf("failed to create user and identity: %w", err)
	}

	slog.Info("new user signed up",
		slog.String("user_id", newUser.ID),
		slog.String("email", email),
	)

	return s.createSession(ctx, newUser.ID, model.ProviderEmail)
}

// LoginWithEmail はメールアドレスとパスワードでログインし、セッションを発行する。
// メール未登録とパスワード誤りは同一のエラーを返す。
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (*model.Session, error) {
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, model.ProviderEmail, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !VerifyPassword(identity.PasswordHash, password) {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", identity.UserID),
		slog.String("provider", string(model.ProviderEmail)),
	)

	return s.createSession(ctx, identity.UserID, model.ProviderEmail)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定しログインする。
func (s *Service) HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, model.NewUnknownProviderError(string(provider))
	}

	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. identitiesテーブルで既存ユーザーを検索
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	var userID string

	if identity != nil {
		// 3a. 既存ユーザー: identityからユーザーIDを取得
		userID = identity.UserID
		slog.Info("existing user logged in",
			slog.String("user_id", userID),
			slog.String("provider", string(userInfo.Provider)),
		)
	} else {
		// 3b. 新規ユーザー: usersレコードとidentitiesレコードを同時に作成
		now := time.Now()

		newUser := &model.User{
			ID:        uuid.New().String(),
			Email:     userInfo.Email,
			Name:      userInfo.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}

		newIdentity := &model.Identity{
			ID:             uuid.New().String(),
			UserID:         newUser.ID,
			Provider:       userInfo.Provider,
			ProviderUserID: userInfo.ProviderUserID,
			CreatedAt:      now,
		}

		if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
			return nil, fmt.Errorf("failed to create user and identity: %w", err)
		}

		userID = newUser.ID
		slog.Info("new user created",
			slog.String("user_id", userID),
			slog.String("email", userInfo.Email),
			slog.String("provider", string(userInfo.Provider)),
		)
	}

	// 4. セッションを発行
	return s.createSession(ctx, userID, userInfo.Provider)
}

// ValidateToken はベアラートークンを検証し、対応するユーザーを返す。
// トークンが無効または期限切れの場合は認証エラーを返す。
// 無効なトークンと期限切れのトークンは区別しない。
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	user, _, err := s.CurrentUser(ctx, token)
	return user, err
}

// CurrentUser はベアラートークンを検証し、対応するユーザーと認証経路を返す。
// GET /api/members/meのレスポンス構築に使用する。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, model.Provider, error) {
	if token == "" {
		return nil, "", model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, "", model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", model.NewUserNotFoundError()
	}

	return user, session.Provider, nil
}

// Logout はトークンに対応するセッションを破棄する。
// トークンが既に無効な場合もエラーにしない（ログアウトの冪等性）。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string, provider model.Provider) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &model.Session{
		Token:     token,
		UserID:    userID,
		Provider:  provider,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateToken は暗号的に安全なベアラートークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
