package view

import (
	"net/http"

	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/session"
)

// LoginRequiredData はログインを促す画面の表示データ。
type LoginRequiredData struct {
	Base
	Next string
}

// RequireAuthentication は未認証の場合にサインインを促す画面のResultとfalseを返す。
// 保護された画面のコントローラーは最初にこれを呼び、falseならバックエンドを呼ばずにそのResultを返す。
func RequireAuthentication(s *session.Store, page Page) (Result, bool) {
	if s != nil && s.IsAuthenticated() {
		return Result{}, true
	}
	data := &LoginRequiredData{Base: Base{Error: model.NewUnauthenticatedError()}, Next: page.Path()}
	return Render(page, TmplLoginRequired, data).WithStatus(http.StatusUnauthorized), false
}
