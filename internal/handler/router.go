package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/citizenly/citizenly/internal/middleware"
)

// HealthChecker はヘルスチェックで使用するDB疎通確認のインターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// セッションゲート
	Verifier   middleware.CredentialVerifier
	GateConfig middleware.GateConfig

	// アンビエントミドルウェア
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// メトリクスフック（nil可）
	GateMetrics   middleware.GateMetrics
	StatusMetrics middleware.StatusMetrics

	// サービス
	AuthService     AuthServiceInterface
	AuthConfig      AuthHandlerConfig
	InterestService InterestServiceInterface
	FeedService     FeedServiceInterface

	// アクセスゲート
	AccessCode string

	// ヘルスチェック
	DB HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → SessionGate
//
// セッションゲートは全ルートに適用され、パス分類に応じて
// リダイレクト・Cookie破棄・主体IDの注入を行う。
// レート制限とCSRF検証は/api配下の認証必須ルートにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusMetrics))
	r.Use(middleware.NewGateMiddleware(deps.Verifier, deps.GateConfig, deps.GateMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	interestHandler := NewInterestHandler(deps.InterestService)
	feedHandler := NewFeedHandler(deps.FeedService)
	accessHandler := NewAccessHandler(deps.AccessCode, deps.GateConfig)

	// --- ゲート分類上Unclassifiedのルート ---

	r.Get("/health", newHealthHandler(deps.DB))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		// logoutは無効な資格情報でも成功させるため保護ルートに含めない
		r.Post("/logout", authHandler.Logout)
		// meは保護ルート: ゲートが主体IDを注入済み
		r.Get("/me", authHandler.Me)
	})

	// --- アクセスゲート（PublicGate: app-access Cookie不要） ---

	r.Route("/api/access", func(r chi.Router) {
		r.Get("/", accessHandler.Status)
		r.Post("/", accessHandler.Grant)
	})

	// CSRFトークン取得（SPAの初期化時に呼ばれる）
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// --- 保護ルート: ゲート通過後に主体IDが存在する ---

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/api/feed", feedHandler.GetFeed)
		r.Get("/api/interests", interestHandler.Get)

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.WriteMiddleware())
			}
			r.Put("/api/interests", interestHandler.Update)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, statusCode, map[string]string{"status": status})
	}
}
