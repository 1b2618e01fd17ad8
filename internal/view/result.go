package view

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/hitoshi/nutriapp/internal/model"
)

// Kind はResultの種類。
type Kind int

// Resultの種類
const (
	KindRender Kind = iota
	KindRedirect
)

// テンプレート名
const (
	TmplLanding        = "landing"
	TmplSignIn         = "sign_in"
	TmplSignUp         = "sign_up"
	TmplWelcome        = "welcome"
	TmplDashboard      = "dashboard"
	TmplProfile        = "profile"
	TmplLogFood        = "log_food"
	TmplViewLogs       = "view_logs"
	TmplAnalysis       = "nutrient_analysis"
	TmplDeleteAccount  = "delete_account"
	TmplAccountDeleted = "account_deleted"
	TmplLoginRequired  = "login_required"
	TmplError          = "error"
)

// Refresh は一定時間後に別画面へ遷移する指定。
type Refresh struct {
	Page  Page
	After time.Duration
}

// Result はコントローラーの処理結果。
// Renderの場合はPageの位置でTemplateを描画し、Redirectの場合はPageへ遷移する。
// Commitがtrueの場合、レスポンスを書き出す前にセッションを確定する必要がある。
type Result struct {
	Kind     Kind
	Page     Page
	Template string
	Status   int
	Data     any
	Query    url.Values
	Refresh  *Refresh
	Commit   bool
}

// Render はテンプレート描画の結果を生成する。
func Render(page Page, tmpl string, data any) Result {
	return Result{Kind: KindRender, Page: page, Template: tmpl, Status: http.StatusOK, Data: data}
}

// Redirect は画面遷移の結果を生成する。
func Redirect(page Page, query url.Values) Result {
	return Result{Kind: KindRedirect, Page: page, Status: http.StatusSeeOther, Query: query}
}

// WithStatus はステータスコードを変更したResultを返す。
func (r Result) WithStatus(status int) Result {
	r.Status = status
	return r
}

// WithRefresh はafter経過後にpageへ遷移するResultを返す。
func (r Result) WithRefresh(page Page, after time.Duration) Result {
	r.Refresh = &Refresh{Page: page, After: after}
	return r
}

// WithData はDataを差し替えたResultを返す。
func (r Result) WithData(data any) Result {
	r.Data = data
	return r
}

// Committed はセッションの確定が必要なResultを返す。
func (r Result) Committed() Result {
	r.Commit = true
	return r
}

// Location はRedirectの遷移先URLを返す。
func (r Result) Location() string {
	loc := r.Page.Path()
	if len(r.Query) > 0 {
		loc += "?" + r.Query.Encode()
	}
	return loc
}

// Notice は画面上部に表示するメッセージ。
type Notice struct {
	Level string
	Text  string
}

// メッセージの種類
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Base は全画面に共通する表示データ。
type Base struct {
	Notices []Notice
	Error   *model.AppError
}

// Failure は画面に表示するエラーを返す。
func (b *Base) Failure() *model.AppError {
	return b.Error
}

func (b *Base) notify(level, text string) {
	b.Notices = append(b.Notices, Notice{Level: level, Text: text})
}

// ErrorData はエラー画面の表示データ。
type ErrorData struct {
	Base
}

// ErrorPage はエラー画面を描画するResultを返す。
func ErrorPage(page Page, status int, appErr *model.AppError) Result {
	return Render(page, TmplError, &ErrorData{Base: Base{Error: appErr}}).WithStatus(status)
}

// Safely はコントローラーを実行し、panicを汎用のエラー画面に変換する。
func Safely(logger *slog.Logger, page Page, fn func() Result) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("view panic recovered",
				slog.String("page", page.Path()),
				slog.String("error", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
			res = ErrorPage(page, http.StatusInternalServerError, model.NewUnexpectedError())
		}
	}()
	return fn()
}
