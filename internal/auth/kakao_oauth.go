package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/unihouse/api/internal/model"
)

const (
	defaultKakaoAuthURL     = "https://kauth.kakao.com/oauth/authorize"
	defaultKakaoTokenURL    = "https://kauth.kakao.com/oauth/token"
	defaultKakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoOAuthConfig はKakao OAuthプロバイダーの設定。
// RESTAPIKeyはKakaoデベロッパーズコンソールのREST APIキー（公開クライアントID相当）。
// ClientSecretはコンソールで有効化した場合のみ設定する。
type KakaoOAuthConfig struct {
	RESTAPIKey   string
	ClientSecret string
	RedirectURL  string

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// KakaoOAuthProvider はKakao OAuth 2.0による認証を提供する。
type KakaoOAuthProvider struct {
	config KakaoOAuthConfig
}

// NewKakaoOAuthProvider はKakaoOAuthProviderを生成する。
func NewKakaoOAuthProvider(config KakaoOAuthConfig) *KakaoOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultKakaoAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultKakaoTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultKakaoUserInfoURL
	}
	return &KakaoOAuthProvider{config: config}
}

// Provider は認証経路識別子を返す。
func (p *KakaoOAuthProvider) Provider() model.Provider {
	return model.ProviderKakao
}

// GetLoginURL はKakaoの認可URLを生成する。
// アプリが組み立てるURLと同一形式: response_type=code&client_id={REST key}&redirect_uri={uri}
func (p *KakaoOAuthProvider) GetLoginURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {p.config.RESTAPIKey},
		"redirect_uri":  {p.config.RedirectURL},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// kakaoTokenResponse はKakaoのトークンエンドポイントのレスポンス。
type kakaoTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// kakaoUserInfo はKakaoのユーザー情報エンドポイント（/v2/user/me）のレスポンス。
// メールアドレスは同意項目のため取得できない場合がある。
type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、ユーザー情報を取得する。
// 認可コードはベアラー資格情報ではないため、交換は必ずサーバー側で行う。
func (p *KakaoOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	tokenResp, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	userInfo, err := p.fetchUserInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderUserID: strconv.FormatInt(userInfo.ID, 10),
		Email:          userInfo.KakaoAccount.Email,
		Name:           userInfo.KakaoAccount.Profile.Nickname,
		Provider:       model.ProviderKakao,
	}, nil
}

// exchangeToken は認可コードをアクセストークンに交換する。
func (p *KakaoOAuthProvider) exchangeToken(ctx context.Context, code string) (*kakaoTokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {p.config.RESTAPIKey},
		"redirect_uri": {p.config.RedirectURL},
		"code":         {code},
	}
	if p.config.ClientSecret != "" {
		data.Set("client_secret", p.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp kakaoTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}

// fetchUserInfo はアクセストークンでKakaoのユーザー情報を取得する。
func (p *KakaoOAuthProvider) fetchUserInfo(ctx context.Context, accessToken string) (*kakaoUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo kakaoUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.ID == 0 {
		return nil, fmt.Errorf("empty id in user info response")
	}

	return &userInfo, nil
}

// compile-time interface check
var _ OAuthProvider = (*KakaoOAuthProvider)(nil)
