package handler

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/model"
)

func TestFlow_SignInDashboardLogout(t *testing.T) {
	app := newTestApp(t)

	app.signIn(t)
	if app.sessionCookie() == nil {
		t.Fatal("expected session cookie after sign-in")
	}

	resp := app.get(t, "/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	doc := parseHTML(t, resp)

	canvases := findAll(doc, byTag("canvas"))
	var ids []string
	for _, c := range canvases {
		ids = append(ids, attr(c, "id"))
		if !strings.HasPrefix(attr(c, "data-chart"), "{") {
			t.Errorf("canvas %s should carry a JSON chart spec", attr(c, "id"))
		}
	}
	for _, want := range []string{"calories-chart", "macro-chart", "meal-chart"} {
		if !slices.Contains(ids, want) {
			t.Errorf("missing chart %q in %v", want, ids)
		}
	}

	badges := findAll(doc, byClass("bmi-badge"))
	if len(badges) != 1 || textOf(badges[0]) != "Normal" {
		t.Errorf("expected a single Normal BMI badge, got %d", len(badges))
	}

	recs := findAll(doc, byClass("recommendation"))
	if len(recs) != 1 {
		t.Fatalf("expected recommendation section, got %d", len(recs))
	}
	if len(findAll(recs[0], byTag("strong"))) != 1 {
		t.Error("recommendation markdown should render emphasis")
	}
	if !strings.Contains(textOf(recs[0]), "Eat more greens") {
		t.Errorf("recommendation text = %q", textOf(recs[0]))
	}

	scripts := findAll(doc, byTag("script"))
	if !slices.ContainsFunc(scripts, func(n *html.Node) bool { return attr(n, "src") == chartScriptURL }) {
		t.Error("dashboard should load the chart script")
	}

	resp = app.post(t, "/logout", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("logout = %d %q, want 303 /", resp.StatusCode, resp.Header.Get("Location"))
	}
	if app.sessionCookie() != nil {
		t.Error("session cookie should be removed after logout")
	}

	resp = app.get(t, "/dashboard")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("dashboard after logout status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestFlow_SignIn_InvalidCredentialsShowsBackendDetail(t *testing.T) {
	app := newTestApp(t)

	resp := app.post(t, "/sign-in", url.Values{"username": {"alice@example.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	doc := parseHTML(t, resp)
	banners := findAll(doc, byClass("banner"))
	if len(banners) != 1 || !strings.Contains(textOf(banners[0]), "Incorrect email or password") {
		t.Errorf("expected backend detail in banner")
	}
	if app.sessionCookie() != nil {
		t.Error("failed sign-in must not set a session")
	}
}

func TestFlow_SignIn_HonoursLocalNextOnly(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/logs", "/logs"},
		{"https://evil.example.com/", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
		{"", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			app := newTestApp(t)
			resp := app.post(t, "/sign-in", url.Values{
				"username": {"alice@example.com"},
				"password": {"correct-horse"},
				"next":     {tt.next},
			})
			if resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
			}
			if got := resp.Header.Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlow_SignUpShowsWelcomeAndRefreshesToDashboard(t *testing.T) {
	app := newTestApp(t)

	resp := app.post(t, "/sign-up", url.Values{
		"email":     {"new@example.com"},
		"password":  {"correct-horse"},
		"full_name": {"New User"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	doc := parseHTML(t, resp)

	notices := noticeTexts(doc)
	if !containsText(notices, "Welcome") || !containsText(notices, model.MsgRedirectingToDashboard) {
		t.Errorf("notices = %v", notices)
	}
	metas := findAll(doc, func(n *html.Node) bool { return n.Data == "meta" && attr(n, "http-equiv") == "refresh" })
	if len(metas) != 1 || !strings.HasPrefix(attr(metas[0], "content"), "6;") || !strings.Contains(attr(metas[0], "content"), "/dashboard") {
		t.Errorf("expected a 6 second refresh to the dashboard")
	}
	if app.sessionCookie() == nil {
		t.Error("sign-up should log the user in")
	}
}

func TestFlow_SignUp_InvalidInputNeverReachesBackend(t *testing.T) {
	app := newTestApp(t)

	resp := app.post(t, "/sign-up", url.Values{"email": {"not-an-email"}, "password": {"short"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	doc := parseHTML(t, resp)
	if len(findAll(doc, byClass("field-errors"))) != 1 {
		t.Error("expected field errors list")
	}
	if len(app.backend.calls()) != 0 {
		t.Errorf("backend calls = %v, want none", app.backend.calls())
	}
}

func TestFlow_LogFoodAndListLogs(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	resp := app.get(t, "/log-food")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("log-food status = %d", resp.StatusCode)
	}
	doc := parseHTML(t, resp)
	inputs := findAll(doc, func(n *html.Node) bool { return n.Data == "input" && attr(n, "type") == "number" })
	if len(inputs) != len(model.AllNutrients) {
		t.Errorf("nutrient inputs = %d, want %d", len(inputs), len(model.AllNutrients))
	}

	resp = app.post(t, "/log-food", url.Values{"log_date": {"2024-06-03"}, "food": {""}, "meal_type": {"Dinner"}, "calories": {"0"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid log status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	notices := noticeTexts(parseHTML(t, resp))
	if !containsText(notices, model.MsgInvalidFoodName) || !containsText(notices, model.MsgInvalidCalories) {
		t.Errorf("notices = %v, want both warnings", notices)
	}

	resp = app.post(t, "/log-food", url.Values{"log_date": {"2024-06-03"}, "food": {"Pasta"}, "meal_type": {"Dinner"}, "calories": {"650"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("log status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !containsText(noticeTexts(parseHTML(t, resp)), model.MsgFoodLogCreated) {
		t.Error("expected created notice")
	}

	resp = app.get(t, "/logs")
	doc = parseHTML(t, resp)
	var titles []string
	for _, s := range findAll(doc, byTag("summary")) {
		titles = append(titles, textOf(s))
	}
	want := []string{"2024-06-02 - Lunch - Salad", "2024-06-01 - Breakfast - Oatmeal"}
	if !slices.Equal(titles, want) {
		t.Errorf("panel titles = %v, want %v", titles, want)
	}
	if !strings.Contains(textOf(doc), "450.46") {
		t.Error("calories should be rounded to two decimals")
	}
}

func TestFlow_LogFood_NonFiniteCaloriesNeverPosted(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	resp := app.post(t, "/log-food", url.Values{"log_date": {"2024-06-03"}, "food": {"Toast"}, "meal_type": {"Breakfast"}, "calories": {"Inf"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if slices.Contains(app.backend.calls(), "POST /food-log") {
		t.Errorf("backend calls = %v, want no food log POST", app.backend.calls())
	}
}

func TestFlow_DeleteLog_RedirectsWithNotice(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	resp := app.post(t, "/logs/1/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/logs?notice=deleted" {
		t.Errorf("Location = %q", loc)
	}

	resp = app.get(t, "/logs?notice=deleted")
	doc := parseHTML(t, resp)
	if !containsText(noticeTexts(doc), model.MsgFoodLogDeleted) {
		t.Error("expected deleted notice")
	}
	var titles []string
	for _, s := range findAll(doc, byTag("summary")) {
		titles = append(titles, textOf(s))
	}
	if want := []string{"2024-06-02 - Lunch - Salad"}; !slices.Equal(titles, want) {
		t.Errorf("panel titles after delete = %v, want %v", titles, want)
	}

	resp = app.post(t, "/logs/999/delete", nil)
	if loc := resp.Header.Get("Location"); loc != "/logs?notice=delete_failed" {
		t.Errorf("Location = %q", loc)
	}
}

func TestFlow_DeleteLog_JSONForScripts(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/logs/2/delete", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.CSRFHeaderName, app.csrfToken(t))
	resp, err := app.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &body)
	if !body.OK || body.Message != model.MsgFoodLogDeleted {
		t.Errorf("body = %+v", body)
	}
	if !slices.Contains(app.backend.calls(), "DELETE /food-log/2") {
		t.Errorf("backend calls = %v", app.backend.calls())
	}
}

func TestFlow_DeleteLog_JSONUnauthenticated(t *testing.T) {
	app := newTestApp(t)

	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/logs/2/delete", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.CSRFHeaderName, app.csrfToken(t))
	resp, err := app.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	var body middleware.ErrorResponseBody
	decodeJSON(t, resp, &body)
	if body.Code != model.ErrCodeUnauthenticated {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthenticated)
	}
	if len(app.backend.calls()) != 0 {
		t.Errorf("backend calls = %v, want none", app.backend.calls())
	}
}

func TestFlow_NutrientAnalysisTable(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	resp := app.get(t, "/nutrient-analysis")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	doc := parseHTML(t, resp)

	rows := map[string]*html.Node{}
	for _, tr := range findAll(doc, byTag("tr")) {
		if key := attr(tr, "data-nutrient"); key != "" {
			rows[key] = tr
		}
	}
	if got := attr(rows["calories"], "class"); got != "band-yellow" {
		t.Errorf("calories band = %q, want band-yellow", got)
	}
	if got := attr(rows["sodium"], "class"); got != "band-red" {
		t.Errorf("sodium band = %q, want band-red", got)
	}
	if !strings.Contains(textOf(rows["calories"]), "75.0") {
		t.Errorf("calories row = %q, want 75.0%%", textOf(rows["calories"]))
	}
	if len(findAll(doc, func(n *html.Node) bool { return attr(n, "id") == "intake-chart" })) != 1 {
		t.Error("expected intake chart")
	}
}

func TestFlow_ProfileEditor(t *testing.T) {
	stub := newStubBackend()
	stub.profile = nil
	app := newTestAppWith(t, stub, nil)
	app.signIn(t)

	resp := app.get(t, "/profile")
	doc := parseHTML(t, resp)
	if !containsText(noticeTexts(doc), model.MsgProfileMissing) {
		t.Error("expected missing profile notice")
	}
	modes := findAll(doc, func(n *html.Node) bool { return attr(n, "name") == "mode" })
	if len(modes) != 1 || attr(modes[0], "value") != "create" {
		t.Fatal("expected create mode form")
	}

	form := url.Values{"mode": {"create"}}
	for _, in := range findAll(doc, byTag("input")) {
		if name := attr(in, "name"); name != "" && name != "mode" && name != middleware.CSRFFieldName {
			form.Set(name, attr(in, "value"))
		}
	}
	for _, sel := range findAll(doc, byTag("select")) {
		for _, opt := range findAll(sel, byTag("option")) {
			if _, ok := attrOK(opt, "selected"); ok {
				form.Set(attr(sel, "name"), attr(opt, "value"))
			}
		}
	}

	resp = app.post(t, "/profile", form)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !containsText(noticeTexts(parseHTML(t, resp)), model.MsgProfileSaved) {
		t.Error("expected saved notice")
	}
	if !slices.Contains(app.backend.calls(), "POST /user-details") {
		t.Errorf("backend calls = %v, want POST /user-details", app.backend.calls())
	}

	form.Set("age", "500")
	before := len(app.backend.calls())
	resp = app.post(t, "/profile", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if len(app.backend.calls()) != before {
		t.Error("out-of-range profile must not reach the backend")
	}
}

func TestFlow_DeleteAccount(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	resp := app.post(t, "/delete-account", url.Values{"password": {"correct-horse"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp = app.post(t, "/delete-account", url.Values{"password": {"correct-horse"}, "confirm": {"true"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	doc := parseHTML(t, resp)
	if !containsText(noticeTexts(doc), model.MsgAccountDeleted) {
		t.Error("expected account deleted notice")
	}
	metas := findAll(doc, func(n *html.Node) bool { return n.Data == "meta" && attr(n, "http-equiv") == "refresh" })
	if len(metas) != 1 || !strings.HasPrefix(attr(metas[0], "content"), "2;") {
		t.Error("expected a 2 second refresh to the landing page")
	}
	if app.sessionCookie() != nil {
		t.Error("session should be cleared after account deletion")
	}
}

func TestFlow_BackendUnreachable(t *testing.T) {
	stub := newStubBackend()
	stub.loginFn = func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer cannot hijack")
		}
		conn, _, _ := hj.Hijack()
		conn.Close()
	}
	app := newTestAppWith(t, stub, nil)

	resp := app.post(t, "/sign-in", url.Values{"username": {"alice@example.com"}, "password": {"correct-horse"}})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
	banners := findAll(parseHTML(t, resp), byClass("banner-connectivity"))
	if len(banners) != 1 {
		t.Error("expected connectivity banner")
	}
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
