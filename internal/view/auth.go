package view

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/security"
	"github.com/hitoshi/nutriapp/internal/session"
)

// LandingData はトップ画面の表示データ。
type LandingData struct {
	Base
	Authenticated bool
	Username      string
}

// Landing はトップ画面を表示する。
func (v *Views) Landing(_ context.Context, s *session.Store) Result {
	return Render(PageLanding, TmplLanding, &LandingData{
		Authenticated: s.IsAuthenticated(),
		Username:      displayUsername(s.Username()),
	})
}

// SignInData はサインイン画面の表示データ。
// LoggedInがtrueの場合はフォームの代わりにログイン中の表示を出す。
type SignInData struct {
	Base
	LoggedIn bool
	Username string
	Next     string
}

// SignInPage はサインイン画面を表示する。
func (v *Views) SignInPage(_ context.Context, s *session.Store, next string) Result {
	data := &SignInData{Next: safeNext(next)}
	if s.IsAuthenticated() {
		data.LoggedIn = true
		data.Username = s.Username()
	}
	return Render(PageSignIn, TmplSignIn, data)
}

// SignIn はユーザー名とパスワードでログインする。
// 成功した場合はセッションを認証済みにしてダッシュボード（またはnextの画面）へ遷移する。
func (v *Views) SignIn(ctx context.Context, s *session.Store, form SignInForm) Result {
	data := &SignInData{Username: form.Username, Next: safeNext(form.Next)}

	if form.Username == "" || form.Password == "" {
		data.notify(LevelWarning, model.MsgMissingCredentials)
		return Render(PageSignIn, TmplSignIn, data).WithStatus(http.StatusBadRequest)
	}

	res, err := v.gateway.Login(ctx, form.Username, form.Password)
	if err != nil {
		v.logFailure("sign-in failed", err)
		switch {
		case backend.IsConnectivity(err):
			data.Error = model.NewConnectivityError(model.MsgCannotConnect)
			return Render(PageSignIn, TmplSignIn, data).WithStatus(http.StatusBadGateway)
		case backend.IsStatus(err, http.StatusNotFound), backend.IsStatus(err, http.StatusBadRequest):
			data.Error = model.NewRejectedError(v.backendText(backend.DetailOf(err)), model.MsgInvalidCredentials)
		default:
			data.Error = model.NewRejectedError("", model.MsgInvalidCredentials)
		}
		return Render(PageSignIn, TmplSignIn, data).WithStatus(http.StatusUnauthorized)
	}

	username := res.Username
	if username == "" {
		username = form.Username
	}
	s.SetAuthenticated(username, res.UserID, res.Token)

	dest := PageDashboard
	if next := safeNext(form.Next); next != "" {
		dest, _ = PageByPath(next)
	}
	return Redirect(dest, nil).Committed()
}

// Logout はセッションを破棄してトップ画面へ遷移する。
func (v *Views) Logout(_ context.Context, s *session.Store) Result {
	s.Clear()
	return Redirect(PageLanding, nil).Committed()
}

// SignUpData はアカウント作成画面の表示データ。
type SignUpData struct {
	Base
	Email    string
	FullName string
}

// SignUpPage はアカウント作成画面を表示する。
func (v *Views) SignUpPage(_ context.Context, _ *session.Store) Result {
	return Render(PageSignUp, TmplSignUp, &SignUpData{})
}

// WelcomeData はアカウント作成後の歓迎画面の表示データ。
type WelcomeData struct {
	Base
	Username string
}

// SignUp はアカウントを作成し、続けて自動ログインする。
// 自動ログインに成功した場合は歓迎画面を表示し、一定時間後にダッシュボードへ遷移する。
func (v *Views) SignUp(ctx context.Context, s *session.Store, form SignUpForm) Result {
	data := &SignUpData{Email: form.Email, FullName: form.FullName}

	if errs := v.forms.check(form); len(errs) > 0 {
		data.Error = model.NewValidationError(errs...)
		return Render(PageSignUp, TmplSignUp, data).WithStatus(http.StatusBadRequest)
	}

	err := v.gateway.Register(ctx, backend.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
	if err != nil {
		v.logFailure("registration failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return Render(PageSignUp, TmplSignUp, data).WithStatus(status)
		}
		data.Error = model.NewRejectedError(v.detailOr(err, ""), model.MsgRegistrationFailed)
		return Render(PageSignUp, TmplSignUp, data).WithStatus(http.StatusBadRequest)
	}
	data.notify(LevelSuccess, model.MsgAccountCreated)

	res, err := v.gateway.Login(ctx, form.Email, form.Password)
	if err != nil {
		v.logFailure("automatic login after registration failed", err)
		data.Error = model.NewRejectedError("", model.MsgAutoLoginFailed)
		return Render(PageSignUp, TmplSignUp, data)
	}

	username := res.Username
	if username == "" {
		username = form.Email
	}
	s.SetAuthenticated(username, res.UserID, res.Token)

	welcome := &WelcomeData{Username: displayUsername(username)}
	welcome.notify(LevelSuccess, model.MsgAccountCreated)
	welcome.notify(LevelSuccess, "Welcome "+welcome.Username+"!")
	welcome.notify(LevelSuccess, "Your Email ID is your username")
	welcome.notify(LevelInfo, model.MsgRedirectingToDashboard)
	return Render(PageSignUp, TmplWelcome, welcome).
		WithRefresh(PageDashboard, welcomeRefresh).
		Committed()
}

// safeNext はサインイン後の遷移先として許可されたパスのみを返す。
func safeNext(next string) string {
	path, ok := security.SafeLocalPath(next, NextPaths())
	if !ok {
		return ""
	}
	return path
}
