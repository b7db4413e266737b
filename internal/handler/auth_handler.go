// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/unihouse/api/internal/middleware"
	"github.com/unihouse/api/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(provider model.Provider, state string) (string, error)
	HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error)
	SignUp(ctx context.Context, email, name, password string) (*model.Session, error)
	LoginWithEmail(ctx context.Context, email, password string) (*model.Session, error)
	CurrentUser(ctx context.Context, token string) (*model.User, model.Provider, error)
	Logout(ctx context.Context, token string) error
}

// LoginRecorder はログイン関連メトリクスの記録インターフェース。
type LoginRecorder interface {
	RecordLogin(provider string, success bool)
	RecordTokenValidation(valid bool)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	// AppRedirectURL はOAuth完了後にアプリへ戻るためのURL。
	// カスタムスキーム（unihouse://oauth）またはWebオリジン。
	AppRedirectURL string
	CookieSecure   bool
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics LoginRecorder
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics LoginRecorder, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
		config:  config,
	}
}

// --- リクエスト・レスポンス型 ---

// signUpRequest はサインアップリクエストのボディ。
// パスワード確認の一致チェックはアプリ側で行う。
type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest はメールログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse はログイン成功時のレスポンス。
// アプリはtokenをuserTokenキーの下に永続化する。
type sessionResponse struct {
	Token    string `json:"token"`
	Provider string `json:"provider"`
}

// meResponse はGET /api/members/meのレスポンス。
type meResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Authorize はOAuthフローを開始する。
// GET /oauth2/authorization/{provider}
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))

	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	loginURL, err := h.service.GetLoginURL(provider, state)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/{provider}/callback?code=xxx&state=yyy
// 同意拒否・コード欠落ではアプリへerror=付きでリダイレクトする（5xxにしない）。
// 成功時はアプリの登録済みコールバックURLへtoken=を付与してリダイレクトする。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))
	query := r.URL.Query()

	// 1. stateの検証（CSRF対策）
	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("provider", string(provider)),
		)
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 同意拒否・キャンセル
	if errParam := query.Get("error"); errParam != "" {
		slog.Info("oauth consent denied",
			slog.String("provider", string(provider)),
			slog.String("error", errParam),
		)
		h.metrics.RecordLogin(string(provider), false)
		h.redirectToApp(w, r, map[string]string{"error": errParam})
		return
	}

	// 3. 認可コードの取得
	code := query.Get("code")
	if code == "" {
		h.metrics.RecordLogin(string(provider), false)
		h.redirectToApp(w, r, map[string]string{"error": "missing_code"})
		return
	}

	// 4. 認証処理
	session, err := h.service.HandleCallback(r.Context(), provider, code)
	if err != nil {
		slog.Error("oauth callback failed",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()),
		)
		h.metrics.RecordLogin(string(provider), false)
		h.redirectToApp(w, r, map[string]string{"error": "login_failed"})
		return
	}

	h.metrics.RecordLogin(string(provider), true)

	// 5. トークンを付与してアプリへリダイレクト
	h.redirectToApp(w, r, map[string]string{
		"token":    session.Token,
		"provider": string(session.Provider),
	})
}

// redirectToApp はアプリの登録済みコールバックURLへクエリパラメータ付きでリダイレクトする。
func (h *AuthHandler) redirectToApp(w http.ResponseWriter, r *http.Request, params map[string]string) {
	u, err := url.Parse(h.config.AppRedirectURL)
	if err != nil {
		slog.Error("invalid app redirect URL", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusTemporaryRedirect)
}

// SignUp はメールアドレスとパスワードで新規登録する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeInvalidRequestError(w)
		return
	}

	session, err := h.service.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.metrics.RecordLogin(string(model.ProviderEmail), false)
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogin(string(model.ProviderEmail), true)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sessionResponse{
		Token:    session.Token,
		Provider: string(session.Provider),
	})
}

// Login はメールアドレスとパスワードでログインする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeInvalidRequestError(w)
		return
	}

	session, err := h.service.LoginWithEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLogin(string(model.ProviderEmail), false)
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogin(string(model.ProviderEmail), true)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{
		Token:    session.Token,
		Provider: string(session.Provider),
	})
}

// Logout はトークンに対応するセッションを破棄する。
// POST /auth/logout
// トークンが無い・既に無効な場合も204を返す（冪等）。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)

	if err := h.service.Logout(r.Context(), token); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /api/members/me
// トークンが無い・無効・期限切れの場合はすべて401を返す。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)

	user, provider, err := h.service.CurrentUser(r.Context(), token)
	if err != nil {
		h.metrics.RecordTokenValidation(false)
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	h.metrics.RecordTokenValidation(true)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		Email:    user.Email,
		Name:     user.Name,
		Provider: string(provider),
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
