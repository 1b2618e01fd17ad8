package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	Sessions      SessionManager
	RateLimiter   *middleware.RateLimiter
	CSRF          middleware.CSRFConfig
	StatusMetrics middleware.StatusRecorder

	// 画面
	Views    *view.Views
	Renderer *Renderer

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// SessionManager はセッションの読み込みと確定を行うインターフェース。
type SessionManager interface {
	middleware.SessionLoader
	SessionCommitter
}

// NewRouter は全画面のルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → SecurityHeaders → Session → RateLimit(General) → CSRF
//
// /health、/metrics、/static/* はセッションとCSRFの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusMetrics))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorPage(w, r, http.StatusNotFound, model.NewNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorPage(w, r, http.StatusMethodNotAllowed, model.NewNotFoundError())
	})

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker).ServeHTTP)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	// --- 画面 ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	h := NewPageHandler(deps.Views, deps.Sessions, deps.Renderer, logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Sessions))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		authLimited := func(fn http.HandlerFunc) http.Handler {
			if deps.RateLimiter == nil {
				return fn
			}
			return deps.RateLimiter.AuthMiddleware()(fn)
		}

		r.Get(view.PageLanding.Path(), h.Landing)

		r.Get(view.PageSignIn.Path(), h.SignInPage)
		r.Method(http.MethodPost, view.PageSignIn.Path(), authLimited(h.SignIn))
		r.Post("/logout", h.Logout)

		r.Get(view.PageSignUp.Path(), h.SignUpPage)
		r.Method(http.MethodPost, view.PageSignUp.Path(), authLimited(h.SignUp))

		r.Get(view.PageDashboard.Path(), h.Dashboard)

		r.Get(view.PageProfile.Path(), h.ProfilePage)
		r.Post(view.PageProfile.Path(), h.SaveProfile)

		r.Get(view.PageLogFood.Path(), h.LogFoodPage)
		r.Post(view.PageLogFood.Path(), h.LogFood)

		r.Get(view.PageViewLogs.Path(), h.ViewLogs)
		r.Post(view.PageViewLogs.Path()+"/{id}/delete", h.DeleteLog)

		r.Get(view.PageNutrientAnalysis.Path(), h.NutrientAnalysis)

		r.Get(view.PageDeleteAccount.Path(), h.DeleteAccountPage)
		r.Method(http.MethodPost, view.PageDeleteAccount.Path(), authLimited(h.DeleteAccount))
	})

	return r
}
