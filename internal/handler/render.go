package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/nutrition"
	"github.com/hitoshi/nutriapp/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// chartScriptURL はChart.jsの配信URL。CSPの許可オリジンと一致させる。
const chartScriptURL = middleware.ChartScriptOrigin + "/npm/chart.js@4.4.1/dist/chart.umd.min.js"

// NavLink はナビゲーションの1項目。
type NavLink struct {
	Path   string
	Title  string
	Active bool
}

// PageData はレイアウトに渡す表示データ。画面固有のデータはDataに入る。
type PageData struct {
	Title         string
	Path          string
	Nav           []NavLink
	Authenticated bool
	Username      string
	CSRFToken     string
	RefreshURL    string
	RefreshAfter  int
	ChartScript   string
	Data          any
}

// Renderer は埋め込みテンプレートからHTMLを描画する。
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

var funcMap = template.FuncMap{
	"num":     nutrition.FormatNumber,
	"opt":     nutrition.FormatOpt,
	"label":   view.FieldLabel,
	"lower":   strings.ToLower,
	"hasText": func(s template.HTML) bool { return strings.TrimSpace(string(s)) != "" },
	"choices": func(current string, options []string) selectChoices {
		return selectChoices{Current: current, Options: options}
	},
}

// selectChoices はselect要素の選択肢と現在値。
type selectChoices struct {
	Current string
	Options []string
}

// NewRenderer は全画面のテンプレートを解析する。
// 各画面はlayout.htmlとpartials.htmlに画面ファイルを重ねたテンプレートセットになる。
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template), logger: logger}
	for _, path := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		if name == "layout" || name == "partials" {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

// Has は指定名のテンプレートが存在するかを返す。
func (rd *Renderer) Has(name string) bool {
	_, ok := rd.templates[name]
	return ok
}

// Render はテンプレートを描画してレスポンスに書き込む。
// 描画はバッファに対して行い、失敗した場合は共通エラーページを返す。
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	tpl, ok := rd.templates[name]
	if !ok {
		rd.logger.Error("template not found", slog.String("template", name))
		middleware.WriteInternalServerError(w, r)
		return
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// navFor はログイン状態に応じたナビゲーションを返す。
func navFor(authenticated bool, current view.Page) []NavLink {
	var pages []view.Page
	if authenticated {
		pages = []view.Page{
			view.PageDashboard, view.PageProfile, view.PageLogFood,
			view.PageViewLogs, view.PageNutrientAnalysis, view.PageDeleteAccount,
		}
	} else {
		pages = []view.Page{view.PageLanding, view.PageSignIn, view.PageSignUp}
	}
	links := make([]NavLink, 0, len(pages))
	for _, p := range pages {
		links = append(links, NavLink{Path: p.Path(), Title: p.Title(), Active: p == current})
	}
	return links
}

// hasCharts は画面データがグラフを含むかを返す。
func hasCharts(data any) bool {
	switch d := data.(type) {
	case *view.DashboardData:
		return len(d.Charts) > 0
	case *view.AnalysisData:
		return d.Chart != nil
	}
	return false
}

func refreshSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 0 {
		return 0
	}
	return s
}
