package middleware

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/hitoshi/nutriapp/internal/model"
)

// ErrorResponseBody はJSONを要求するクライアント向けのエラーレスポンス形式。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

var errorPageTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Message}} · NutriApp</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<main class="container">
<section class="banner banner-{{.Category}}" role="alert" data-code="{{.Code}}">
<h1>{{.Message}}</h1>
<p>{{.Action}}</p>
</section>
<p><a href="/">Back to NutriApp</a></p>
</main>
</body>
</html>
`))

// WriteErrorPage はHTTPレベルの失敗を共通のエラーページとして書き込む。
// Acceptがapplication/jsonの場合は同じ内容をJSONで返す。
func WriteErrorPage(w http.ResponseWriter, r *http.Request, statusCode int, appErr *model.AppError) {
	if appErr == nil {
		appErr = model.NewUnexpectedError()
	}
	body := ErrorResponseBody{
		Code:     appErr.Code,
		Message:  appErr.Message,
		Category: appErr.Category,
		Action:   appErr.Action,
	}

	if WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(body)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := errorPageTmpl.Execute(w, body); err != nil {
		slog.Error("failed to render error page", slog.String("error", err.Error()))
	}
}

// WriteInternalServerError は内部エラーの共通ページを書き込む。
// 詳細はログのみに記録する。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteErrorPage(w, r, http.StatusInternalServerError, model.NewUnexpectedError())
}

// WantsJSON はリクエストがJSONレスポンスを要求しているかを判定する。
func WantsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}
