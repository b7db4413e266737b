// Package client はアプリ側のセッションライフサイクルをGoパッケージとして提供する。
// トークンの永続化、OAuthブリッジの結果処理、起動時のセッション復元を担当する。
package client

import "github.com/unihouse/api/internal/model"

// Session はログイン中ユーザーを表すタグ付き共用体。
// プロバイダーごとに保持する資格情報が異なるため、型スイッチで網羅的に扱う。
// 非nilのSessionが存在することが「ログイン済み」の唯一のシグナル。
type Session interface {
	// Provider は認証経路を返す。
	Provider() model.Provider
	// BearerToken は永続化対象のベアラートークンを返す。未取得なら空文字。
	BearerToken() string

	isSession()
}

// EmailSession はメールアドレスとパスワードでログインしたセッション。
type EmailSession struct {
	Email string
	Name  string
	Token string
}

func (s EmailSession) Provider() model.Provider { return model.ProviderEmail }
func (s EmailSession) BearerToken() string      { return s.Token }
func (s EmailSession) isSession()               {}

// GoogleSession はGoogle OAuthでログインしたセッション。
// ネイティブフローではAccessTokenを、バックエンドリダイレクトフローではTokenを保持する。
// Emailはバックエンドの本人確認で解決された場合のみ設定される。
type GoogleSession struct {
	AccessToken string
	Email       string
	Name        string
	Token       string
}

func (s GoogleSession) Provider() model.Provider { return model.ProviderGoogle }
func (s GoogleSession) BearerToken() string      { return s.Token }
func (s GoogleSession) isSession()               {}

// KakaoSession はKakao OAuthでログインしたセッション。
// Codeは認可コードでありベアラー資格情報ではない。バックエンド交換後はTokenを保持する。
type KakaoSession struct {
	Code  string
	Email string
	Name  string
	Token string
}

func (s KakaoSession) Provider() model.Provider { return model.ProviderKakao }
func (s KakaoSession) BearerToken() string      { return s.Token }
func (s KakaoSession) isSession()               {}

var (
	_ Session = EmailSession{}
	_ Session = GoogleSession{}
	_ Session = KakaoSession{}
)
