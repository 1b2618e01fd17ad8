// Package view は画面ごとのコントローラーを提供する。
// 各コントローラーはセッションと入力を受け取り、描画・リダイレクトのいずれかを
// 明示的なResultとして返す。HTTPへの書き出しはhandlerパッケージが担当する。
package view

// Page は画面を表す。画面遷移は常にPageで指定する。
type Page int

// 画面一覧
const (
	PageLanding Page = iota
	PageSignIn
	PageSignUp
	PageDashboard
	PageProfile
	PageLogFood
	PageNutrientAnalysis
	PageViewLogs
	PageDeleteAccount
)

type pageInfo struct {
	path  string
	title string
}

var pages = map[Page]pageInfo{
	PageLanding:          {"/", "NutriApp"},
	PageSignIn:           {"/sign-in", "Sign In"},
	PageSignUp:           {"/sign-up", "Sign Up"},
	PageDashboard:        {"/dashboard", "Dashboard"},
	PageProfile:          {"/profile", "User Profile"},
	PageLogFood:          {"/log-food", "Log Food"},
	PageNutrientAnalysis: {"/nutrient-analysis", "Nutrient Analysis"},
	PageViewLogs:         {"/logs", "View Food Logs"},
	PageDeleteAccount:    {"/delete-account", "Delete Account"},
}

// Path は画面のURLパスを返す。
func (p Page) Path() string {
	return pages[p].path
}

// Title は画面のタイトルを返す。
func (p Page) Title() string {
	return pages[p].title
}

// AllPages は全画面を定義順に返す。
func AllPages() []Page {
	return []Page{
		PageLanding, PageSignIn, PageSignUp, PageDashboard, PageProfile,
		PageLogFood, PageNutrientAnalysis, PageViewLogs, PageDeleteAccount,
	}
}

// PageByPath はURLパスに対応する画面を返す。
func PageByPath(path string) (Page, bool) {
	for p, info := range pages {
		if info.path == path {
			return p, true
		}
	}
	return PageLanding, false
}

// protectedPages はログイン後の遷移先として受け付ける画面。
var protectedPages = []Page{PageDashboard, PageProfile, PageLogFood, PageNutrientAnalysis, PageViewLogs, PageDeleteAccount}

// NextPaths はサインイン後の遷移先として許可するパスの一覧を返す。
func NextPaths() []string {
	paths := make([]string, 0, len(protectedPages))
	for _, p := range protectedPages {
		paths = append(paths, p.Path())
	}
	return paths
}
