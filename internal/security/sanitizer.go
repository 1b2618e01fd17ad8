// Package security はアプリケーションのセキュリティ機能を提供する。
//
// バックエンドから受け取ったテキスト（エラー詳細、食事推奨）は信頼できない入力として扱い、
// bluemondayの許可リストポリシーでサニタイズしてから画面に出す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はバックエンド由来のテキストとHTMLをサニタイズする。
type Sanitizer interface {
	// SanitizeHTML はMarkdownから生成したHTMLを許可リストのタグのみに制限する。
	SanitizeHTML(rawHTML string) string
	// PlainText は全てのタグを除去したプレーンテキストを返す。
	PlainText(text string) string
}

// ContentSanitizer はSanitizerの実装。ポリシーは生成後に変更しないためスレッドセーフ。
type ContentSanitizer struct {
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerを生成する。
// 許可タグ: p, br, ul, ol, li, h1-h4, blockquote, pre, code, strong, em, table関連, a(href)。
// リンクは絶対URLのみ許可し、target="_blank"とrel="noopener noreferrer"を付与する。
func NewContentSanitizer() *ContentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"h1", "h2", "h3", "h4",
		"blockquote", "pre", "code",
		"strong", "em", "hr",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &ContentSanitizer{
		rich:   p,
		strict: bluemonday.StrictPolicy(),
	}
}

// SanitizeHTML はHTMLをサニタイズする。
func (s *ContentSanitizer) SanitizeHTML(rawHTML string) string {
	return s.rich.Sanitize(rawHTML)
}

// PlainText はタグを除去し、エスケープされた実体参照を元の文字に戻して前後の空白を除く。
// 戻り値はテンプレート側で再度エスケープされる。
func (s *ContentSanitizer) PlainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(text)))
}

var _ Sanitizer = (*ContentSanitizer)(nil)
