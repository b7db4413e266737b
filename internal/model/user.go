// Package model はドメインモデルを定義する。
package model

import "time"

// Provider は認証経路を表す。email / google / kakao の3種のみ。
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
)

// IsValid はサポートされている認証経路かどうかを返す。
func (p Provider) IsValid() bool {
	switch p {
	case ProviderEmail, ProviderGoogle, ProviderKakao:
		return true
	}
	return false
}

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は認証経路との紐付け情報を表す。
// emailプロバイダーの場合はPasswordHashにbcryptハッシュを保持し、
// ProviderUserIDにはメールアドレスをそのまま使用する。
type Identity struct {
	ID             string
	UserID         string
	Provider       Provider
	ProviderUserID string
	PasswordHash   string
	CreatedAt      time.Time
}

// Session はアプリが保持するベアラートークンに対応するログインセッションを表す。
// Tokenは不透明な乱数文字列で、アプリ側はuserTokenキーの下に永続化する。
type Session struct {
	Token     string
	UserID    string
	Provider  Provider
	ExpiresAt time.Time
	CreatedAt time.Time
}
