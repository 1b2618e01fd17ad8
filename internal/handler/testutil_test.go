package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/repository"
	"github.com/hitoshi/nutriapp/internal/security"
	"github.com/hitoshi/nutriapp/internal/session"
	"github.com/hitoshi/nutriapp/internal/view"
)

// stubBackend はバックエンドREST APIのインメモリ実装。
// 各操作はフィールドの関数で差し替えられる。
type stubBackend struct {
	mu       sync.Mutex
	profile  map[string]any
	logs     []map[string]any
	deleted  []string
	requests []string

	loginFn  func(w http.ResponseWriter, r *http.Request)
	deleteFn func(w http.ResponseWriter, r *http.Request)
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		profile: map[string]any{
			"age": 30, "gender": "Female", "height_cm": 165, "weight_kg": 60,
			"chronic_disease": "NA", "cholesterol_level": 180, "blood_sugar_level": 90,
			"blood_pressure_systolic": 120, "blood_pressure_diastolic": 80,
			"daily_steps": 8000, "exercise_frequency": 3, "sleep_hours": 7,
			"alcohol_consumption": "No", "smoking_habit": "No", "dietary_habits": "Regular",
			"preferred_cuisine": "Asian", "food_aversions": "NA", "allergies": "NA",
			"genetic_risk_factor": "No", "calorie_intake": 2000, "protein_intake": 50,
			"fat_intake": 70, "carbohydrate_intake": 250, "bmi": 22.04,
		},
		logs: []map[string]any{
			{"id": 1, "log_date": "2024-06-01", "food": "Oatmeal", "meal_type": "Breakfast", "calories": 300, "protein": 10, "fat": 5, "carbs": 54},
			{"id": 2, "log_date": "2024-06-02", "food": "Salad", "meal_type": "Lunch", "calories": 450.456, "protein": 20, "fat": 15, "carbs": 40},
		},
	}
}

func (b *stubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login/access-token":
		if b.loginFn != nil {
			b.loginFn(w, r)
			return
		}
		r.ParseForm()
		if r.PostForm.Get("password") != "correct-horse" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"username": r.PostForm.Get("username"), "user_id": 42, "token": "tok-42"})
	case r.Method == http.MethodPost && r.URL.Path == "/user/register":
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	case r.Method == http.MethodDelete && r.URL.Path == "/user/delete":
		if b.deleteFn != nil {
			b.deleteFn(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	case r.Method == http.MethodGet && r.URL.Path == "/user-details":
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.profile == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, b.profile)
	case (r.Method == http.MethodPost || r.Method == http.MethodPatch) && r.URL.Path == "/user-details":
		writeJSON(w, http.StatusOK, map[string]string{"message": "saved"})
	case r.Method == http.MethodGet && (r.URL.Path == "/food-log" || r.URL.Path == "/food-log/latest/"):
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.logs)
	case r.Method == http.MethodPost && r.URL.Path == "/food-log":
		writeJSON(w, http.StatusCreated, map[string]string{"message": "created"})
	case r.Method == http.MethodGet && r.URL.Path == "/food-log/nutrition-summary/":
		writeJSON(w, http.StatusOK, map[string]any{
			"average":     map[string]any{"calories": 1500, "sodium": 600},
			"recommended": map[string]any{"calories": 2000, "sodium": 1500},
		})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/food-log/"):
		id := strings.TrimPrefix(r.URL.Path, "/food-log/")
		b.mu.Lock()
		b.deleted = append(b.deleted, id)
		if id == "999" {
			b.mu.Unlock()
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "missing"})
			return
		}
		b.logs = slices.DeleteFunc(b.logs, func(entry map[string]any) bool {
			return fmt.Sprint(entry["id"]) == id
		})
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	case r.Method == http.MethodPost && r.URL.Path == "/predict/diet":
		writeJSON(w, http.StatusOK, map[string]string{"recommendation": "eat more **greens**"})
	default:
		http.NotFound(w, r)
	}
}

func (b *stubBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// testApp はテスト用に組み立てたアプリケーション。
type testApp struct {
	server  *httptest.Server
	backend *stubBackend
	client  *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, newStubBackend(), nil)
}

func newTestAppWith(t *testing.T, stub *stubBackend, customize func(*RouterDeps)) *testApp {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	backendServer := httptest.NewServer(stub)
	t.Cleanup(backendServer.Close)

	gateway := backend.NewClient(backend.ClientConfig{BaseURL: backendServer.URL},
		&http.Client{Timeout: 5 * time.Second}, logger, nil)
	views := view.New(gateway, security.NewContentSanitizer(), logger)

	renderer, err := NewRenderer(logger)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	deps := &RouterDeps{
		Logger:   logger,
		Sessions: session.NewManager(repository.NewMemorySessionRepo(), session.ManagerConfig{MaxAge: time.Hour}),
		Views:    views,
		Renderer: renderer,
	}
	if customize != nil {
		customize(deps)
	}

	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{server: server, backend: stub, client: client}
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// csrfToken はCookieJarに保存されたCSRFトークンを返す。未取得ならトップ画面を開いて取得する。
func (a *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(a.server.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	a.get(t, "/")
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("csrf cookie was not issued")
	return ""
}

func (a *testApp) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(middleware.CSRFFieldName, a.csrfToken(t))
	resp, err := a.client.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	resp := a.post(t, "/sign-in", url.Values{"username": {"alice@example.com"}, "password": {"correct-horse"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("sign-in status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
}

func (a *testApp) sessionCookie() *http.Cookie {
	u, _ := url.Parse(a.server.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func parseHTML(t *testing.T, resp *http.Response) *html.Node {
	t.Helper()
	doc, err := html.Parse(resp.Body)
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// noticeTexts は画面上部のメッセージを返す。
func noticeTexts(doc *html.Node) []string {
	var out []string
	for _, n := range findAll(doc, byClass("notice")) {
		out = append(out, textOf(n))
	}
	return out
}

func containsText(list []string, want string) bool {
	for _, s := range list {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}
