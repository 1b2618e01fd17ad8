package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/session"
	"github.com/hitoshi/nutriapp/internal/view"
)

// SessionCommitter はセッションの確定に必要なインターフェース。
// session.Managerの部分集合として定義する。
type SessionCommitter interface {
	Commit(ctx context.Context, w http.ResponseWriter, s *session.Store) error
}

// PageHandler は画面コントローラーをHTTPに接続するハンドラー。
type PageHandler struct {
	views    *view.Views
	sessions SessionCommitter
	renderer *Renderer
	logger   *slog.Logger
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(views *view.Views, sessions SessionCommitter, renderer *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{views: views, sessions: sessions, renderer: renderer, logger: logger}
}

// run はコントローラーをpanicから保護して実行し、結果をレスポンスに書き出す。
func (h *PageHandler) run(w http.ResponseWriter, r *http.Request, page view.Page, fn func(ctx context.Context, s *session.Store) view.Result) {
	store := middleware.StoreFromContext(r.Context())
	res := view.Safely(h.logger, page, func() view.Result {
		return fn(r.Context(), store)
	})
	h.write(w, r, store, res)
}

// write はResultをHTTPレスポンスとして書き出す。
// Commitが指定されている場合は先にセッションを確定する。
func (h *PageHandler) write(w http.ResponseWriter, r *http.Request, store *session.Store, res view.Result) {
	if res.Commit {
		if err := h.sessions.Commit(r.Context(), w, store); err != nil {
			h.logger.Error("failed to commit session",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			middleware.WriteInternalServerError(w, r)
			return
		}
	}

	if res.Kind == view.KindRedirect {
		if outcome, ok := res.Data.(view.DeleteOutcome); ok && middleware.WantsJSON(r) {
			writeJSON(w, http.StatusOK, outcome)
			return
		}
		http.Redirect(w, r, res.Location(), res.Status)
		return
	}

	if res.Status >= http.StatusBadRequest && middleware.WantsJSON(r) {
		middleware.WriteErrorPage(w, r, res.Status, failureOf(res.Data))
		return
	}

	authenticated := store.IsAuthenticated()
	data := PageData{
		Title:         res.Page.Title(),
		Path:          res.Page.Path(),
		Nav:           navFor(authenticated, res.Page),
		Authenticated: authenticated,
		CSRFToken:     middleware.CSRFTokenFromContext(r.Context()),
		Data:          res.Data,
	}
	if authenticated {
		data.Username = store.Username()
	}
	if res.Refresh != nil {
		data.RefreshURL = res.Refresh.Page.Path()
		data.RefreshAfter = refreshSeconds(res.Refresh.After)
	}
	if hasCharts(res.Data) {
		data.ChartScript = chartScriptURL
	}

	h.renderer.Render(w, r, res.Status, res.Template, data)
}

// form はPOSTされたフォーム値を解析する。解析に失敗した場合は400を返してfalseを返す。
func (h *PageHandler) form(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse form",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		middleware.WriteErrorPage(w, r, http.StatusBadRequest, nil)
		return false
	}
	return true
}

// Landing はトップ画面を表示する。
// GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageLanding, h.views.Landing)
}

// SignInPage はサインインフォームを表示する。
// GET /sign-in
func (h *PageHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	h.run(w, r, view.PageSignIn, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.SignInPage(ctx, s, next)
	})
}

// SignIn はサインインを実行する。
// POST /sign-in
func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if !h.form(w, r) {
		return
	}
	form := view.DecodeSignInForm(r.PostForm)
	h.run(w, r, view.PageSignIn, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.SignIn(ctx, s, form)
	})
}

// Logout はログアウトする。
// POST /logout
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageLanding, h.views.Logout)
}

// SignUpPage はアカウント作成フォームを表示する。
// GET /sign-up
func (h *PageHandler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageSignUp, h.views.SignUpPage)
}

// SignUp はアカウントを作成し、自動ログインする。
// POST /sign-up
func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if !h.form(w, r) {
		return
	}
	form := view.DecodeSignUpForm(r.PostForm)
	h.run(w, r, view.PageSignUp, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.SignUp(ctx, s, form)
	})
}

// Dashboard はダッシュボードを表示する。
// GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageDashboard, h.views.Dashboard)
}

// ProfilePage はプロフィール編集画面を表示する。
// GET /profile
func (h *PageHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageProfile, h.views.ProfilePage)
}

// SaveProfile はプロフィールを保存する。
// POST /profile
func (h *PageHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	if !h.form(w, r) {
		return
	}
	form := view.DecodeProfileForm(r.PostForm)
	h.run(w, r, view.PageProfile, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.SaveProfile(ctx, s, form)
	})
}

// LogFoodPage は食事記録フォームを表示する。
// GET /log-food
func (h *PageHandler) LogFoodPage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageLogFood, h.views.LogFoodPage)
}

// LogFood は食事記録を作成する。
// POST /log-food
func (h *PageHandler) LogFood(w http.ResponseWriter, r *http.Request) {
	if !h.form(w, r) {
		return
	}
	form := view.DecodeFoodLogForm(r.PostForm)
	h.run(w, r, view.PageLogFood, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.LogFood(ctx, s, form)
	})
}

// ViewLogs は食事記録の一覧を表示する。
// GET /logs
func (h *PageHandler) ViewLogs(w http.ResponseWriter, r *http.Request) {
	notice := r.URL.Query().Get("notice")
	h.run(w, r, view.PageViewLogs, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.ViewLogs(ctx, s, notice)
	})
}

// DeleteLog は食事記録を削除する。
// POST /logs/{id}/delete
// Acceptがapplication/jsonの場合は一覧へのリダイレクトの代わりに結果をJSONで返す。
func (h *PageHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.run(w, r, view.PageViewLogs, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.DeleteLog(ctx, s, id)
	})
}

// NutrientAnalysis は栄養素分析画面を表示する。
// GET /nutrient-analysis
func (h *PageHandler) NutrientAnalysis(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageNutrientAnalysis, h.views.NutrientAnalysis)
}

// DeleteAccountPage はアカウント削除画面を表示する。
// GET /delete-account
func (h *PageHandler) DeleteAccountPage(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, view.PageDeleteAccount, h.views.DeleteAccountPage)
}

// DeleteAccount はアカウントを削除する。
// POST /delete-account
func (h *PageHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !h.form(w, r) {
		return
	}
	form := view.DecodeDeleteAccountForm(r.PostForm)
	h.run(w, r, view.PageDeleteAccount, func(ctx context.Context, s *session.Store) view.Result {
		return h.views.DeleteAccount(ctx, s, form)
	})
}

// failureOf は画面データに含まれるエラーを取り出す。
func failureOf(data any) *model.AppError {
	if f, ok := data.(interface{ Failure() *model.AppError }); ok {
		return f.Failure()
	}
	return nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
