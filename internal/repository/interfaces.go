// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/unihouse/api/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、bookmarksはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は認証経路紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider model.Provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はベアラートークンセッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByToken は指定トークンのセッションを取得する。期限切れの場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken は指定トークンのセッションを削除する。
	// トークンが存在しない場合もエラーにしない（ログアウトの冪等性）。
	DeleteByToken(ctx context.Context, token string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ListingRepository は掲示データの永続化インターフェース。
type ListingRepository interface {
	// FindByID は指定IDの掲示を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Listing, error)

	// ListAll は全掲示を自然順（新着順）で返す。
	// 絞り込み・並び替えはサービス層の純関数で行う（モックデータ規模のため）。
	ListAll(ctx context.Context) ([]model.Listing, error)

	// Create は掲示を作成する。
	Create(ctx context.Context, listing *model.Listing) error
}

// BookmarkRepository はユーザーごとのブックマーク状態の永続化インターフェース。
type BookmarkRepository interface {
	// Set はブックマーク状態を冪等に設定する。onがtrueなら付与、falseなら解除。
	Set(ctx context.Context, userID, listingID string, on bool) error

	// ListListingIDsByUser はユーザーがブックマークした掲示IDの集合を返す。
	ListListingIDsByUser(ctx context.Context, userID string) (map[string]bool, error)

	// DeleteByUserID はユーザーの全ブックマークを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
