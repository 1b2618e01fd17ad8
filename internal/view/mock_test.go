package view

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/security"
	"github.com/hitoshi/nutriapp/internal/session"
)

// --- モック定義 ---

// mockGateway はbackend.Gatewayのモック実装。未設定のメソッドが呼ばれるとテストを失敗させる。
type mockGateway struct {
	t     *testing.T
	mu    sync.Mutex
	calls []string

	loginFn             func(ctx context.Context, username, password string) (*backend.LoginResult, error)
	registerFn          func(ctx context.Context, req backend.RegisterRequest) error
	deleteAccountFn     func(ctx context.Context, token, password string) error
	getUserDetailsFn    func(ctx context.Context, token string) (*model.UserProfile, error)
	createUserDetailsFn func(ctx context.Context, token string, profile model.UserProfile, userID string) error
	updateUserDetailsFn func(ctx context.Context, token string, profile model.UserProfile) error
	createFoodLogFn     func(ctx context.Context, token string, entry model.FoodLogEntry) error
	listFoodLogsFn      func(ctx context.Context, token string) ([]model.FoodLogEntry, error)
	latestFoodLogsFn    func(ctx context.Context, token string, days int) ([]model.FoodLogEntry, error)
	deleteFoodLogFn     func(ctx context.Context, token string, id model.LogID) error
	nutritionSummaryFn  func(ctx context.Context, token string) (*model.NutrientSummary, error)
	predictDietFn       func(ctx context.Context, token string, profile model.UserProfile) (string, error)
}

func (m *mockGateway) record(op string, set bool) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
	if !set {
		m.t.Fatalf("unexpected gateway call: %s", op)
	}
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockGateway) Login(ctx context.Context, username, password string) (*backend.LoginResult, error) {
	m.record(backend.OpLogin, m.loginFn != nil)
	return m.loginFn(ctx, username, password)
}

func (m *mockGateway) Register(ctx context.Context, req backend.RegisterRequest) error {
	m.record(backend.OpRegister, m.registerFn != nil)
	return m.registerFn(ctx, req)
}

func (m *mockGateway) DeleteAccount(ctx context.Context, token, password string) error {
	m.record(backend.OpDeleteAccount, m.deleteAccountFn != nil)
	return m.deleteAccountFn(ctx, token, password)
}

func (m *mockGateway) GetUserDetails(ctx context.Context, token string) (*model.UserProfile, error) {
	m.record(backend.OpGetUserDetails, m.getUserDetailsFn != nil)
	return m.getUserDetailsFn(ctx, token)
}

func (m *mockGateway) CreateUserDetails(ctx context.Context, token string, profile model.UserProfile, userID string) error {
	m.record(backend.OpCreateUserDetails, m.createUserDetailsFn != nil)
	return m.createUserDetailsFn(ctx, token, profile, userID)
}

func (m *mockGateway) UpdateUserDetails(ctx context.Context, token string, profile model.UserProfile) error {
	m.record(backend.OpUpdateUserDetails, m.updateUserDetailsFn != nil)
	return m.updateUserDetailsFn(ctx, token, profile)
}

func (m *mockGateway) CreateFoodLog(ctx context.Context, token string, entry model.FoodLogEntry) error {
	m.record(backend.OpCreateFoodLog, m.createFoodLogFn != nil)
	return m.createFoodLogFn(ctx, token, entry)
}

func (m *mockGateway) ListFoodLogs(ctx context.Context, token string) ([]model.FoodLogEntry, error) {
	m.record(backend.OpListFoodLogs, m.listFoodLogsFn != nil)
	return m.listFoodLogsFn(ctx, token)
}

func (m *mockGateway) LatestFoodLogs(ctx context.Context, token string, days int) ([]model.FoodLogEntry, error) {
	m.record(backend.OpLatestFoodLogs, m.latestFoodLogsFn != nil)
	return m.latestFoodLogsFn(ctx, token, days)
}

func (m *mockGateway) DeleteFoodLog(ctx context.Context, token string, id model.LogID) error {
	m.record(backend.OpDeleteFoodLog, m.deleteFoodLogFn != nil)
	return m.deleteFoodLogFn(ctx, token, id)
}

func (m *mockGateway) NutritionSummary(ctx context.Context, token string) (*model.NutrientSummary, error) {
	m.record(backend.OpNutritionSummary, m.nutritionSummaryFn != nil)
	return m.nutritionSummaryFn(ctx, token)
}

func (m *mockGateway) PredictDiet(ctx context.Context, token string, profile model.UserProfile) (string, error) {
	m.record(backend.OpPredictDiet, m.predictDietFn != nil)
	return m.predictDietFn(ctx, token, profile)
}

var _ backend.Gateway = (*mockGateway)(nil)

// --- ヘルパー ---

func newTestViews(t *testing.T) (*Views, *mockGateway, *bytes.Buffer) {
	t.Helper()
	gw := &mockGateway{t: t}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := New(gw, security.NewContentSanitizer(), logger)
	v.now = func() time.Time { return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) }
	return v, gw, &buf
}

func anonymousStore() *session.Store {
	s := session.NewStore()
	s.Initialize()
	return s
}

func authenticatedStore() *session.Store {
	s := anonymousStore()
	s.SetAuthenticated("alice", "42", "tok-alice")
	return s
}

func rejected(op string, status int, detail string) error {
	return &backend.RejectedError{Op: op, StatusCode: status, Detail: detail}
}

func unreachable(op string) error {
	return &backend.ConnectivityError{Op: op, Err: context.Canceled}
}

func timedOut(op string) error {
	return &backend.ConnectivityError{Op: op, Timeout: true, Err: context.DeadlineExceeded}
}

func hasNotice(b Base, level, text string) bool {
	for _, n := range b.Notices {
		if n.Level == level && n.Text == text {
			return true
		}
	}
	return false
}

func errorMessage(b Base) string {
	if b.Error == nil {
		return ""
	}
	return b.Error.Message
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("invalid date %q: %v", s, err)
	}
	return d
}
