package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/unihouse/api/internal/model"
)

// State はセッションコントローラーの状態。
type State int

const (
	// StateChecking は起動直後、永続トークンの検証が完了するまでの状態。
	// 起動時に一度だけ入り、復元完了後に再び入ることはない。
	StateChecking State = iota
	// StateAuthenticated はログイン済み。
	StateAuthenticated
	// StateUnauthenticated は未ログイン。
	StateUnauthenticated
)

// String はログ出力用の状態名を返す。
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Controller は「誰がログインしているか」の唯一の情報源。
// OAuthブリッジとトークンストアを仲介し、起動時のセッション復元を行う。
// 全操作はミューテックスで直列化され、復元中のログアウトは復元完了まで待つ。
type Controller struct {
	mu      sync.Mutex
	state   State
	session Session
	notices []string

	store      TokenStore
	origin     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewController はControllerを生成する。初期状態はchecking。
// originはバックエンドのオリジン（例: https://api.unihouse.kr）。
func NewController(store TokenStore, origin string, logger *slog.Logger) *Controller {
	return &Controller{
		state:      StateChecking,
		store:      store,
		origin:     origin,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// State は現在の状態を返す。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current は現在のセッションを返す。未ログインならnil。
func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Notices は蓄積されたユーザー向け通知のコピーを返す。
func (c *Controller) Notices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.notices))
	copy(out, c.notices)
	return out
}

// meResponse はGET /api/members/meのレスポンスボディ。
type meResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// RestoreSession は永続トークンからセッションを復元する。起動時に一度だけ呼ぶ。
// トークンが無い場合はネットワークアクセスなしで未ログインに遷移する。
// トークンがある場合はGET /api/members/meで検証し、
// 失敗（非2xx・ネットワークエラー）ならトークンを削除して未ログインに遷移する。
// 復元後に「トークンは残っているがセッションはnil」という状態を残さない。
func (c *Controller) RestoreSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateChecking {
		return fmt.Errorf("restore called in state %s", c.state)
	}

	token, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Error("failed to load persisted token", slog.String("error", err.Error()))
		c.state = StateUnauthenticated
		return nil
	}
	if token == "" {
		c.state = StateUnauthenticated
		return nil
	}

	identity, err := c.validateToken(ctx, token)
	if err != nil {
		c.logger.Info("persisted token rejected, clearing",
			slog.String("error", err.Error()),
		)
		if delErr := c.store.Delete(ctx); delErr != nil {
			c.logger.Error("failed to delete rejected token", slog.String("error", delErr.Error()))
		}
		c.state = StateUnauthenticated
		return nil
	}

	session, err := sessionFromIdentity(identity, token)
	if err != nil {
		c.logger.Error("unexpected identity from backend", slog.String("error", err.Error()))
		if delErr := c.store.Delete(ctx); delErr != nil {
			c.logger.Error("failed to delete token", slog.String("error", delErr.Error()))
		}
		c.state = StateUnauthenticated
		return nil
	}

	c.session = session
	c.state = StateAuthenticated
	return nil
}

// validateToken はトークンをバックエンドで検証し、本人情報を返す。
func (c *Controller) validateToken(ctx context.Context, token string) (*meResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin+"/api/members/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("validation returned status %d", resp.StatusCode)
	}

	var identity meResponse
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &identity, nil
}

// sessionFromIdentity は本人情報からプロバイダーに応じたセッションを組み立てる。
func sessionFromIdentity(identity *meResponse, token string) (Session, error) {
	switch model.Provider(identity.Provider) {
	case model.ProviderEmail:
		return EmailSession{Email: identity.Email, Name: identity.Name, Token: token}, nil
	case model.ProviderGoogle:
		return GoogleSession{Email: identity.Email, Name: identity.Name, Token: token}, nil
	case model.ProviderKakao:
		return KakaoSession{Email: identity.Email, Name: identity.Name, Token: token}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", identity.Provider)
	}
}

// Login は現在のセッションを無条件に置き換える。
// セッションがベアラートークンを持つ場合は永続化する。
func (c *Controller) Login(ctx context.Context, session Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token := session.BearerToken(); token != "" {
		if err := c.store.Save(ctx, token); err != nil {
			c.logger.Error("failed to persist token", slog.String("error", err.Error()))
		}
	}

	c.session = session
	c.state = StateAuthenticated
}

// LoginWith はOAuthブリッジでフローを実行し、成功時にセッションを確立する。
// キャンセル・失敗時はセッションを作らず、ユーザー向け通知を1件だけ積む。
// どの結果もパニックや未捕捉のエラーとして伝播しない。
func (c *Controller) LoginWith(ctx context.Context, bridge Bridge) {
	result := bridge.Authenticate(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch result.Kind {
	case ResultSuccess:
		session := sessionFromResult(bridge.Provider(), result)
		if token := session.BearerToken(); token != "" {
			if err := c.store.Save(ctx, token); err != nil {
				c.logger.Error("failed to persist token", slog.String("error", err.Error()))
			}
		}
		c.session = session
		c.state = StateAuthenticated

	case ResultCancelled:
		c.notices = append(c.notices, "로그인이 취소되었습니다.")

	case ResultFailed:
		c.logger.Info("oauth bridge failed",
			slog.String("provider", string(bridge.Provider())),
			slog.String("reason", result.Reason),
		)
		c.notices = append(c.notices, "로그인에 실패했습니다. 다시 시도해 주세요.")
	}
}

// sessionFromResult はブリッジ成功結果からプロバイダーに応じたセッションを組み立てる。
func sessionFromResult(provider model.Provider, result AuthResult) Session {
	switch provider {
	case model.ProviderGoogle:
		return GoogleSession{Token: result.Token}
	case model.ProviderKakao:
		return KakaoSession{Code: result.Code, Token: result.Token}
	default:
		return EmailSession{Token: result.Token}
	}
}

// Logout はセッションを破棄する。
// トークン削除を先に試み、削除に失敗してもログに残すだけで
// インメモリのセッションは必ずクリアする。未ログイン状態での呼び出しは冪等。
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx); err != nil {
		c.logger.Error("failed to delete persisted token", slog.String("error", err.Error()))
	}

	c.session = nil
	c.state = StateUnauthenticated
}
