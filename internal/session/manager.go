package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/nutriapp/internal/repository"
)

// CookieName はセッションIDを保持するCookie名。
const CookieName = "nutriapp_session"

// セッション状態遷移の種類。メトリクスのラベルに使う。
const (
	TransitionAuthenticated = "authenticated"
	TransitionCleared       = "cleared"
)

// TransitionRecorder はセッション状態遷移を記録するインターフェース。
type TransitionRecorder interface {
	RecordSessionTransition(transition string)
}

// ManagerConfig はManagerの設定を保持する。
type ManagerConfig struct {
	MaxAge       time.Duration
	CookieSecure bool
	CookieDomain string
	Recorder     TransitionRecorder
}

// Manager はCookieとセッションリポジトリの間でStoreを読み込み・確定する。
type Manager struct {
	repo     repository.SessionRepository
	maxAge   time.Duration
	secure   bool
	domain   string
	recorder TransitionRecorder
	now      func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(repo repository.SessionRepository, cfg ManagerConfig) *Manager {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Manager{
		repo:     repo,
		maxAge:   maxAge,
		secure:   cfg.CookieSecure,
		domain:   cfg.CookieDomain,
		recorder: cfg.Recorder,
		now:      time.Now,
	}
}

// Load は指定IDのセッションを読み込む。
// IDが空、存在しない、または期限切れの場合は初期化済みの匿名Storeを返す。
func (m *Manager) Load(ctx context.Context, id string) (*Store, error) {
	if id == "" {
		return m.anonymous(), nil
	}
	rec, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return m.anonymous(), fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil || rec.Expired(m.now()) {
		return m.anonymous(), nil
	}
	rec.LoggedIn = true
	return newStoreFrom(*rec, m.now), nil
}

// LoadRequest はリクエストのCookieからセッションを読み込む。
func (m *Manager) LoadRequest(r *http.Request) (*Store, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.anonymous(), nil
	}
	return m.Load(r.Context(), cookie.Value)
}

// Commit はStoreの状態を永続化し、Cookieをレスポンスに設定する。
// 認証済みの場合は新しいセッションIDに切り替えて保存する。
// 未認証の場合は保存済みのセッションを削除しCookieを失効させる。
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Store) error {
	oldID := s.detach()
	if oldID != "" {
		if err := m.repo.DeleteByID(ctx, oldID); err != nil {
			return fmt.Errorf("failed to delete previous session: %w", err)
		}
	}

	if !s.IsAuthenticated() {
		m.expireCookie(w)
		m.record(TransitionCleared)
		return nil
	}

	now := m.now()
	expiresAt := now.Add(m.maxAge)
	if exp, ok := TokenExpiry(s.Token()); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}

	rec := s.bind(uuid.NewString(), expiresAt, now)
	if err := m.repo.Create(ctx, &rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    rec.ID,
		Path:     "/",
		Domain:   m.domain,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.record(TransitionAuthenticated)
	return nil
}

func (m *Manager) anonymous() *Store {
	s := &Store{now: m.now}
	s.Initialize()
	return s
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) record(transition string) {
	if m.recorder != nil {
		m.recorder.RecordSessionTransition(transition)
	}
}

// TokenExpiry はバックエンドが発行したJWTのexpクレームを返す。
// 発行者ではないため署名は検証しない。JWTでない場合やexpがない場合はfalseを返す。
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		slog.Debug("backend token is not a parseable JWT", slog.String("error", err.Error()))
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
