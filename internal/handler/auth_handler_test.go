package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unihouse/api/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(provider model.Provider, state string) (string, error)
	handleCallbackFn func(ctx context.Context, provider model.Provider, code string) (*model.Session, error)
	signUpFn         func(ctx context.Context, email, name, password string) (*model.Session, error)
	loginWithEmailFn func(ctx context.Context, email, password string) (*model.Session, error)
	currentUserFn    func(ctx context.Context, token string) (*model.User, model.Provider, error)
	logoutFn         func(ctx context.Context, token string) error
}

func (m *mockAuthService) GetLoginURL(provider model.Provider, state string) (string, error) {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(provider, state)
	}
	return "", nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, provider, code)
	}
	return nil, nil
}

func (m *mockAuthService) SignUp(ctx context.Context, email, name, password string) (*model.Session, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, name, password)
	}
	return nil, nil
}

func (m *mockAuthService) LoginWithEmail(ctx context.Context, email, password string) (*model.Session, error) {
	if m.loginWithEmailFn != nil {
		return m.loginWithEmailFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, token string) (*model.User, model.Provider, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return nil, "", nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

// mockRecorder はメトリクス記録の呼び出しを捕捉するモック。
type mockRecorder struct {
	logins           []loginRecord
	tokenValidations []bool
	searches         int
	created          int
}

type loginRecord struct {
	provider string
	success  bool
}

func (m *mockRecorder) RecordLogin(provider string, success bool) {
	m.logins = append(m.logins, loginRecord{provider: provider, success: success})
}

func (m *mockRecorder) RecordTokenValidation(valid bool) {
	m.tokenValidations = append(m.tokenValidations, valid)
}

func (m *mockRecorder) RecordListingSearch()  { m.searches++ }
func (m *mockRecorder) RecordListingCreated() { m.created++ }

var _ LoginRecorder = (*mockRecorder)(nil)
var _ ListingRecorder = (*mockRecorder)(nil)

// withURLParam はchiのURLパラメータをリクエストに注入するテストヘルパー。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		AppRedirectURL: "unihouse://oauth",
		CookieSecure:   false,
	}
}

// --- Authorize ---

func TestAuthHandler_Authorize_RedirectsToProviderURL(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(provider model.Provider, state string) (string, error) {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state, nil
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/oauth2/authorization/google", nil)
	req = withURLParam(req, "provider", "google")
	w := httptest.NewRecorder()

	h.Authorize(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location := resp.Header.Get("Location")
	if !containsStr(location, "accounts.google.com") {
		t.Errorf("Location = %q, should contain provider oauth URL", location)
	}

	// stateクッキーが設定されること
	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
			break
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if stateCookie.Value == "" {
		t.Error("oauth_state cookie should have a value")
	}
	if !stateCookie.HttpOnly {
		t.Error("oauth_state cookie should be HttpOnly")
	}
	if !containsStr(location, stateCookie.Value) {
		t.Error("redirect URL should carry the same state as the cookie")
	}
}

func TestAuthHandler_Authorize_UnknownProvider_ReturnsBadRequest(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(provider model.Provider, state string) (string, error) {
			return "", model.NewUnknownProviderError(string(provider))
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/oauth2/authorization/naver", nil)
	req = withURLParam(req, "provider", "naver")
	w := httptest.NewRecorder()

	h.Authorize(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeUnknownProvider {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnknownProvider)
	}
}

// --- Callback ---

func callbackRequest(t *testing.T, provider, rawQuery, stateCookie string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/"+provider+"/callback?"+rawQuery, nil)
	req = withURLParam(req, "provider", provider)
	if stateCookie != "" {
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: stateCookie})
	}
	return req
}

func TestAuthHandler_Callback_Success_RedirectsToAppWithToken(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
			if code != "test-code" {
				t.Errorf("code = %q, want %q", code, "test-code")
			}
			return &model.Session{
				Token:     "token-abc",
				UserID:    "user-1",
				Provider:  model.ProviderKakao,
				ExpiresAt: time.Now().Add(24 * time.Hour),
			}, nil
		},
	}
	rec := &mockRecorder{}
	h := NewAuthHandler(svc, rec, testAuthConfig())

	req := callbackRequest(t, "kakao", "code=test-code&state=test-state", "test-state")
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse Location: %v", err)
	}
	if location.Scheme != "unihouse" {
		t.Errorf("scheme = %q, want %q", location.Scheme, "unihouse")
	}
	query := location.Query()
	if query.Get("token") != "token-abc" {
		t.Errorf("token = %q, want %q", query.Get("token"), "token-abc")
	}
	if query.Get("provider") != "kakao" {
		t.Errorf("provider = %q, want %q", query.Get("provider"), "kakao")
	}

	// stateクッキーが削除されること
	for _, c := range resp.Cookies() {
		if c.Name == "oauth_state" && c.MaxAge != -1 {
			t.Errorf("oauth_state cookie MaxAge = %d, want -1 (delete)", c.MaxAge)
		}
	}

	if len(rec.logins) != 1 || !rec.logins[0].success {
		t.Errorf("logins = %+v, want one successful record", rec.logins)
	}
}

func TestAuthHandler_Callback_ConsentDenied_RedirectsToAppWithError(t *testing.T) {
	rec := &mockRecorder{}
	h := NewAuthHandler(&mockAuthService{}, rec, testAuthConfig())

	req := callbackRequest(t, "google", "error=access_denied&state=test-state", "test-state")
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse Location: %v", err)
	}
	if location.Query().Get("error") != "access_denied" {
		t.Errorf("error = %q, want %q", location.Query().Get("error"), "access_denied")
	}
	if location.Query().Get("token") != "" {
		t.Error("token should not be present on consent denial")
	}

	if len(rec.logins) != 1 || rec.logins[0].success {
		t.Errorf("logins = %+v, want one failed record", rec.logins)
	}
}

func TestAuthHandler_Callback_MissingCode_RedirectsToAppWithError(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockRecorder{}, testAuthConfig())

	req := callbackRequest(t, "google", "state=test-state", "test-state")
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse Location: %v", err)
	}
	if location.Query().Get("error") != "missing_code" {
		t.Errorf("error = %q, want %q", location.Query().Get("error"), "missing_code")
	}
}

func TestAuthHandler_Callback_StateMismatch_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockRecorder{}, testAuthConfig())

	req := callbackRequest(t, "google", "code=test-code&state=wrong-state", "correct-state")
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Callback_ExchangeFails_RedirectsToAppWithError(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
			return nil, errors.New("exchange failed")
		},
	}
	rec := &mockRecorder{}
	h := NewAuthHandler(svc, rec, testAuthConfig())

	req := callbackRequest(t, "google", "code=bad-code&state=test-state", "test-state")
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse Location: %v", err)
	}
	if location.Query().Get("error") != "login_failed" {
		t.Errorf("error = %q, want %q", location.Query().Get("error"), "login_failed")
	}
	if len(rec.logins) != 1 || rec.logins[0].success {
		t.Errorf("logins = %+v, want one failed record", rec.logins)
	}
}

// --- SignUp / Login ---

func TestAuthHandler_SignUp_ReturnsCreatedWithToken(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, name, password string) (*model.Session, error) {
			return &model.Session{Token: "new-token", Provider: model.ProviderEmail}, nil
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	body := bytes.NewBufferString(`{"email":"kim@unihouse.kr","name":"김민준","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Token != "new-token" {
		t.Errorf("token = %q, want %q", got.Token, "new-token")
	}
	if got.Provider != "email" {
		t.Errorf("provider = %q, want %q", got.Provider, "email")
	}
}

func TestAuthHandler_SignUp_EmailTaken_ReturnsConflict(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, name, password string) (*model.Session, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	body := bytes.NewBufferString(`{"email":"kim@unihouse.kr","name":"김민준","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestAuthHandler_SignUp_EmptyFields_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockRecorder{}, testAuthConfig())

	body := bytes.NewBufferString(`{"email":"","name":"","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_Success_ReturnsToken(t *testing.T) {
	svc := &mockAuthService{
		loginWithEmailFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{Token: "login-token", Provider: model.ProviderEmail}, nil
		},
	}
	rec := &mockRecorder{}
	h := NewAuthHandler(svc, rec, testAuthConfig())

	body := bytes.NewBufferString(`{"email":"kim@unihouse.kr","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Token != "login-token" {
		t.Errorf("token = %q, want %q", got.Token, "login-token")
	}

	if len(rec.logins) != 1 || !rec.logins[0].success || rec.logins[0].provider != "email" {
		t.Errorf("logins = %+v, want one successful email record", rec.logins)
	}
}

func TestAuthHandler_Login_InvalidCredentials_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginWithEmailFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	body := bytes.NewBufferString(`{"email":"kim@unihouse.kr","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var body2 apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body2); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body2.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body2.Code, model.ErrCodeInvalidCredentials)
	}
}

// --- Logout / Me ---

func TestAuthHandler_Logout_ReturnsNoContent(t *testing.T) {
	var gotToken string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer token-to-revoke")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if gotToken != "token-to-revoke" {
		t.Errorf("token = %q, want %q", gotToken, "token-to-revoke")
	}
}

func TestAuthHandler_Logout_NoToken_StillNoContent(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockRecorder{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestAuthHandler_Me_ValidToken_ReturnsUserWithProvider(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, token string) (*model.User, model.Provider, error) {
			return &model.User{
				ID:    "user-1",
				Email: "kim@unihouse.kr",
				Name:  "김민준",
			}, model.ProviderKakao, nil
		},
	}
	rec := &mockRecorder{}
	h := NewAuthHandler(svc, rec, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got meResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Email != "kim@unihouse.kr" {
		t.Errorf("email = %q, want %q", got.Email, "kim@unihouse.kr")
	}
	if got.Provider != "kakao" {
		t.Errorf("provider = %q, want %q", got.Provider, "kakao")
	}

	if len(rec.tokenValidations) != 1 || !rec.tokenValidations[0] {
		t.Errorf("tokenValidations = %+v, want one valid record", rec.tokenValidations)
	}
}

func TestAuthHandler_Me_InvalidToken_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, token string) (*model.User, model.Provider, error) {
			return nil, "", model.NewUnauthorizedError()
		},
	}
	rec := &mockRecorder{}
	h := NewAuthHandler(svc, rec, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	if len(rec.tokenValidations) != 1 || rec.tokenValidations[0] {
		t.Errorf("tokenValidations = %+v, want one invalid record", rec.tokenValidations)
	}
}

func TestAuthHandler_Me_NoToken_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, token string) (*model.User, model.Provider, error) {
			if token != "" {
				t.Errorf("token = %q, want empty", token)
			}
			return nil, "", model.NewUnauthorizedError()
		},
	}
	h := NewAuthHandler(svc, &mockRecorder{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

// containsStr は文字列sにsubstrが含まれるかチェックするヘルパー。
func containsStr(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
