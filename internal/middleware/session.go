// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutriapp/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	storeContextKey = contextKey("session_store")
	logContextKey   = contextKey("request_log")
)

// SessionLoader はリクエストからセッションを読み込むインターフェース。
// session.Managerの部分集合として定義する。
type SessionLoader interface {
	LoadRequest(r *http.Request) (*session.Store, error)
}

// NewSessionMiddleware はCookieからセッションを読み込み、
// session.Storeをリクエストコンテキストに注入するミドルウェアを返す。
// 読み込みに失敗した場合も匿名セッションとして処理を続ける。
func NewSessionMiddleware(loader SessionLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := loader.LoadRequest(r)
			if err != nil {
				slog.Error("failed to load session",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
			}
			if store == nil {
				store = session.NewStore()
				store.Initialize()
			}

			if store.IsAuthenticated() {
				setLogUserID(r.Context(), store.UserID())
			}

			ctx := ContextWithStore(r.Context(), store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext はリクエストコンテキストからsession.Storeを取得する。
// セッションミドルウェアを通過していない場合は初期化済みの匿名Storeを返す。
func StoreFromContext(ctx context.Context) *session.Store {
	if s, ok := ctx.Value(storeContextKey).(*session.Store); ok && s != nil {
		return s
	}
	s := session.NewStore()
	s.Initialize()
	return s
}

// ContextWithStore はコンテキストにsession.Storeを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithStore(ctx context.Context, s *session.Store) context.Context {
	return context.WithValue(ctx, storeContextKey, s)
}

// UserIDFromContext は認証済みセッションのユーザーIDを返す。
func UserIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(storeContextKey).(*session.Store)
	if !ok || s == nil || !s.IsAuthenticated() {
		return "", false
	}
	id := s.UserID()
	return id, id != ""
}
