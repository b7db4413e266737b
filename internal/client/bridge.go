package client

import (
	"context"
	"net/url"

	"github.com/unihouse/api/internal/model"
)

// AuthResultKind はブリッジの完了結果の種別。
type AuthResultKind int

const (
	// ResultSuccess は資格情報（トークンまたは認可コード）の取得に成功した。
	ResultSuccess AuthResultKind = iota
	// ResultCancelled はユーザーがフローを中断した。例外ではなく通常の結果として扱う。
	ResultCancelled
	// ResultFailed は同意拒否・コールバック不正などでフローが失敗した。
	ResultFailed
)

// AuthResult はOAuthブリッジの完了結果。
// success(code|token) | cancelled | failed(reason) の3値で、
// キャンセルも失敗も結果値として返り、呼び出し側にパニックを伝播しない。
type AuthResult struct {
	Kind   AuthResultKind
	Token  string // 成功時。バックエンドが発行したベアラートークン。
	Code   string // 成功時。プロバイダーの認可コード。
	Reason string // 失敗時の理由。
}

// SuccessToken はトークン取得成功の結果を返す。
func SuccessToken(token string) AuthResult {
	return AuthResult{Kind: ResultSuccess, Token: token}
}

// SuccessCode は認可コード取得成功の結果を返す。
func SuccessCode(code string) AuthResult {
	return AuthResult{Kind: ResultSuccess, Code: code}
}

// Cancelled はユーザーキャンセルの結果を返す。
func Cancelled() AuthResult {
	return AuthResult{Kind: ResultCancelled}
}

// Failed は失敗の結果を返す。
func Failed(reason string) AuthResult {
	return AuthResult{Kind: ResultFailed, Reason: reason}
}

// Bridge は外部ブラウザなどで認可フローを実行し、結果を返すインターフェース。
// 同時に実行できるフローはブリッジごとに1つまで。
type Bridge interface {
	Provider() model.Provider
	Authenticate(ctx context.Context) AuthResult
}

// ParseCallbackURL はリダイレクトコールバックURLを解析してAuthResultに変換する。
// token / code クエリパラメータのどちらかを資格情報として取り出す。
// 同名パラメータが複数回現れた場合は先頭の値を採用する。
// error パラメータまたは資格情報の欠落は失敗として扱う。
func ParseCallbackURL(raw string) AuthResult {
	u, err := url.Parse(raw)
	if err != nil {
		return Failed("malformed callback URL")
	}

	query := u.Query()

	if errParam := firstValue(query, "error"); errParam != "" {
		return Failed(errParam)
	}

	if token := firstValue(query, "token"); token != "" {
		return SuccessToken(token)
	}
	if code := firstValue(query, "code"); code != "" {
		return SuccessCode(code)
	}

	return Failed("callback URL carries no token or code")
}

// firstValue は配列で渡されたクエリパラメータの先頭値を返す。
func firstValue(query url.Values, key string) string {
	values := query[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// ExtractWebToken はWebフローでページURLからtokenパラメータを取り出す。
// トークンと、tokenパラメータを除去した書き換え後のURLを返す。
// 書き換え後のURLで履歴を置換することで、リロード時のトークン再送を防ぐ。
// tokenパラメータが存在しない場合はok=falseを返し、URLは変更しない。
func ExtractWebToken(pageURL string) (token, rewritten string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", pageURL, false
	}

	query := u.Query()
	token = firstValue(query, "token")
	if token == "" {
		return "", pageURL, false
	}

	query.Del("token")
	u.RawQuery = query.Encode()

	return token, u.String(), true
}
