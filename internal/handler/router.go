package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unihouse/api/internal/metrics"
	"github.com/unihouse/api/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 掲示
	ListingService ListingServiceInterface

	// 会員
	UserService UserServiceInterface

	// メトリクス
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → Auth → RateLimit(General)
//
// 認証ルート（/auth/*、/oauth2/*）とヘルスチェックはBearerトークン検証の外に配置する。
// /api/members/me のGETはハンドラー内でトークンを検証するため、認証グループの外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics, deps.AuthConfig)
	listingHandler := NewListingHandler(deps.ListingService, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/health", healthCheck)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(deps.Gatherer))
	}

	// OAuthフロー開始（Spring Security互換のパス）
	r.Get("/oauth2/authorization/{provider}", authHandler.Authorize)

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// GET /api/members/me - トークン検証を兼ねるため、結果にかかわらずハンドラーが応答する
	r.Get("/api/members/me", authHandler.Me)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 掲示管理
		r.Route("/api/listings", func(r chi.Router) {
			r.Get("/", listingHandler.List)

			// POST /api/listings - 掲示登録（登録専用レート制限を追加）
			r.With(deps.RateLimiter.ListingRegistrationMiddleware()).Post("/", listingHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listingHandler.Get)
				r.Put("/bookmark", listingHandler.Bookmark)
			})
		})

		// 会員管理
		r.Delete("/api/members/me", userHandler.Withdraw)
	})

	return r
}

// healthCheck はサービスの稼働状態を返す。
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
