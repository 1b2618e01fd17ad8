package view

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/security"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// 遷移までの待ち時間
const (
	welcomeRefresh        = 6 * time.Second
	accountDeletedRefresh = 2 * time.Second
	dashboardLogDays      = 7
)

// Views は全画面のコントローラーを保持する。
type Views struct {
	gateway   backend.Gateway
	sanitizer security.Sanitizer
	markdown  goldmark.Markdown
	forms     *formValidator
	logger    *slog.Logger
	now       func() time.Time
}

// New はViewsを生成する。
func New(gateway backend.Gateway, sanitizer security.Sanitizer, logger *slog.Logger) *Views {
	return &Views{
		gateway:   gateway,
		sanitizer: sanitizer,
		markdown: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		forms:  newFormValidator(),
		logger: logger,
		now:    time.Now,
	}
}

// renderMarkdown はバックエンドのテキストをMarkdownとして描画し、サニタイズしたHTMLを返す。
func (v *Views) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := v.markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(v.sanitizer.SanitizeHTML(buf.String()))
}

// backendText はバックエンド由来の文字列からタグを除く。
func (v *Views) backendText(s string) string {
	return v.sanitizer.PlainText(s)
}

// rejectedText はRejectedErrorの理由を表示用に取り出す。理由がなければfallbackを返す。
func (v *Views) rejectedText(err error, fallback string) string {
	var rej *backend.RejectedError
	if errors.As(err, &rej) {
		if t := v.backendText(rej.Text()); t != "" {
			return t
		}
	}
	return fallback
}

// detailOr はRejectedErrorのdetailを表示用に取り出す。なければfallbackを返す。
func (v *Views) detailOr(err error, fallback string) string {
	if d := v.backendText(backend.DetailOf(err)); d != "" {
		return d
	}
	return fallback
}

// connectivityError は通信失敗を画面表示用のエラーに変換する。
// 通信失敗でなければnilを返す。
func connectivityError(err error, message string) (*model.AppError, int) {
	var ce *backend.ConnectivityError
	if !errors.As(err, &ce) {
		return nil, 0
	}
	if ce.Timeout {
		return model.NewTimeoutError(message), http.StatusGatewayTimeout
	}
	return model.NewConnectivityError(message), http.StatusBadGateway
}

// logFailure はバックエンド呼び出しの失敗を記録する。
func (v *Views) logFailure(msg string, err error) {
	v.logger.Warn(msg, slog.String("error", err.Error()))
}

// capitalize は先頭の1文字を大文字にする。
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// displayUsername は表示用のユーザー名を返す。
func displayUsername(name string) string {
	return capitalize(strings.TrimSpace(name))
}
