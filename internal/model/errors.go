// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。メッセージはアプリの表示言語（韓国語）。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, listing, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeUnknownProvider    = "UNKNOWN_PROVIDER"
	ErrCodeOAuthDenied        = "OAUTH_DENIED"
	ErrCodeListingNotFound    = "LISTING_NOT_FOUND"
	ErrCodeInvalidGender      = "INVALID_GENDER"
	ErrCodeInvalidSort        = "INVALID_SORT"
	ErrCodeInvalidListing     = "INVALID_LISTING"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewUnauthorizedError は認証必須エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "로그인이 필요합니다.",
		Category: "auth",
		Action:   "다시 로그인해 주세요.",
	}
}

// NewInvalidCredentialsError はメール/パスワード不一致エラーを生成する。
// メール未登録とパスワード誤りは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "이메일 또는 비밀번호가 올바르지 않습니다.",
		Category: "auth",
		Action:   "입력 내용을 확인해 주세요.",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "이미 가입된 이메일입니다.",
		Category: "auth",
		Action:   "로그인하거나 다른 이메일을 사용해 주세요.",
	}
}

// NewWeakPasswordError はパスワード長不足エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "비밀번호는 6자 이상이어야 합니다.",
		Category: "validation",
		Action:   "6자 이상의 비밀번호를 입력해 주세요.",
	}
}

// NewUnknownProviderError は未対応の認証経路エラーを生成する。
func NewUnknownProviderError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownProvider,
		Message:  fmt.Sprintf("지원하지 않는 로그인 방식입니다: %s", provider),
		Category: "auth",
		Action:   "이메일, Google, Kakao 중 하나로 로그인해 주세요.",
	}
}

// NewOAuthDeniedError はOAuth同意拒否・キャンセルエラーを生成する。
func NewOAuthDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthDenied,
		Message:  "로그인이 취소되었거나 실패했습니다.",
		Category: "auth",
		Action:   "다시 시도해 주세요.",
	}
}

// NewListingNotFoundError は掲示未検出エラーを生成する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("해당 매물을 찾을 수 없습니다: %s", listingID),
		Category: "listing",
		Action:   "매물 ID를 확인해 주세요.",
	}
}

// NewInvalidGenderError は無効な性別ファセットエラーを生成する。
func NewInvalidGenderError(gender string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidGender,
		Message:  fmt.Sprintf("유효하지 않은 성별 필터입니다: %s", gender),
		Category: "validation",
		Action:   "남성, 여성, 무관 중 하나를 선택해 주세요.",
	}
}

// NewInvalidSortError は無効な並び順エラーを生成する。
func NewInvalidSortError(sort string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("유효하지 않은 정렬 방식입니다: %s", sort),
		Category: "validation",
		Action:   "latest 또는 price를 지정해 주세요.",
	}
}

// NewInvalidListingError は掲示入力の検証エラーを生成する。
func NewInvalidListingError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidListing,
		Message:  fmt.Sprintf("입력 내용이 올바르지 않습니다: %s", reason),
		Category: "validation",
		Action:   "필수 항목을 확인해 주세요.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "사용자를 찾을 수 없습니다.",
		Category: "auth",
		Action:   "다시 로그인해 주세요.",
	}
}
