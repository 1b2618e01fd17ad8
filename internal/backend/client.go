// Package backend はNutriAppバックエンドREST APIのクライアントを提供する。
// 認証、ユーザー詳細、食事記録、栄養サマリー、食事推奨の各エンドポイントを
// 操作ごとのメソッドとして公開する。
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/nutriapp/internal/metrics"
	"github.com/hitoshi/nutriapp/internal/model"
)

const (
	// maxResponseSize はレスポンス本文の読み取り上限。
	maxResponseSize = 1 << 20
	// maxErrorBody はRejectedErrorに保持する本文の上限。
	maxErrorBody = 512
	userAgent    = "NutriApp-Web/1.0"
)

// 操作名。ログとメトリクスのラベルに使う。
const (
	OpLogin             = "login"
	OpRegister          = "register"
	OpDeleteAccount     = "delete_account"
	OpGetUserDetails    = "get_user_details"
	OpCreateUserDetails = "create_user_details"
	OpUpdateUserDetails = "update_user_details"
	OpCreateFoodLog     = "create_food_log"
	OpListFoodLogs      = "list_food_logs"
	OpLatestFoodLogs    = "latest_food_logs"
	OpDeleteFoodLog     = "delete_food_log"
	OpNutritionSummary  = "nutrition_summary"
	OpPredictDiet       = "predict_diet"
)

// Gateway はビューから利用するバックエンド操作のインターフェース。
// 接続失敗は*ConnectivityError、想定外のステータスは*RejectedErrorとして返す。
type Gateway interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) error
	DeleteAccount(ctx context.Context, token, password string) error
	GetUserDetails(ctx context.Context, token string) (*model.UserProfile, error)
	CreateUserDetails(ctx context.Context, token string, profile model.UserProfile, userID string) error
	UpdateUserDetails(ctx context.Context, token string, profile model.UserProfile) error
	CreateFoodLog(ctx context.Context, token string, entry model.FoodLogEntry) error
	ListFoodLogs(ctx context.Context, token string) ([]model.FoodLogEntry, error)
	LatestFoodLogs(ctx context.Context, token string, days int) ([]model.FoodLogEntry, error)
	DeleteFoodLog(ctx context.Context, token string, id model.LogID) error
	NutritionSummary(ctx context.Context, token string) (*model.NutrientSummary, error)
	PredictDiet(ctx context.Context, token string, profile model.UserProfile) (string, error)
}

// LoginResult はログイン成功時のレスポンス。
type LoginResult struct {
	Username string
	UserID   string
	Token    string
}

// RegisterRequest はユーザー登録のリクエスト。
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// CallRecorder はバックエンド呼び出しの結果を記録するインターフェース。
type CallRecorder interface {
	RecordBackendCall(operation, outcome string, duration time.Duration)
}

// ClientConfig はClientの設定を保持する。
type ClientConfig struct {
	BaseURL        string
	BootstrapToken string
}

// Client はGatewayのHTTP実装。
type Client struct {
	baseURL        string
	bootstrapToken string
	httpClient     *http.Client
	logger         *slog.Logger
	recorder       CallRecorder
}

// NewClient はClientの新しいインスタンスを生成する。recorderがnilの場合は記録しない。
func NewClient(cfg ClientConfig, httpClient *http.Client, logger *slog.Logger, recorder CallRecorder) *Client {
	if recorder == nil {
		recorder = metrics.NopCollector{}
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		bootstrapToken: cfg.BootstrapToken,
		httpClient:     httpClient,
		logger:         logger,
		recorder:       recorder,
	}
}

// call は1回のバックエンド呼び出しを表す。
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	form   url.Values
	body   any
	accept []int
	out    any
}

// Login はユーザー名とパスワードでアクセストークンを取得する。
// ブートストラップトークンが設定されていればベアラーとして送る。
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp struct {
		Username string     `json:"username"`
		UserID   flexString `json:"user_id"`
		Token    string     `json:"token"`
	}
	err := c.do(ctx, call{
		op:     OpLogin,
		method: http.MethodPost,
		path:   "/auth/login/access-token",
		token:  c.bootstrapToken,
		form:   url.Values{"username": {username}, "password": {password}},
		accept: []int{http.StatusOK},
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Username: resp.Username, UserID: string(resp.UserID), Token: resp.Token}, nil
}

// Register は新しいユーザーを登録する。
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, call{
		op:     OpRegister,
		method: http.MethodPost,
		path:   "/user/register",
		body:   req,
		accept: []int{http.StatusOK},
	})
}

// DeleteAccount は確認用パスワードを付けてアカウントを削除する。
func (c *Client) DeleteAccount(ctx context.Context, token, password string) error {
	return c.do(ctx, call{
		op:     OpDeleteAccount,
		method: http.MethodDelete,
		path:   "/user/delete",
		query:  url.Values{"confirmation_pwd": {password}},
		token:  token,
		accept: []int{http.StatusOK},
	})
}

// GetUserDetails はプロフィールを取得する。未登録の場合は404のRejectedErrorになる。
func (c *Client) GetUserDetails(ctx context.Context, token string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := c.do(ctx, call{
		op:     OpGetUserDetails,
		method: http.MethodGet,
		path:   "/user-details",
		token:  token,
		accept: []int{http.StatusOK},
		out:    &profile,
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateUserDetails はuser_idを付けてプロフィールを新規作成する。
func (c *Client) CreateUserDetails(ctx context.Context, token string, profile model.UserProfile, userID string) error {
	profile.BMI = nil
	payload := struct {
		model.UserProfile
		UserID string `json:"user_id"`
	}{UserProfile: profile, UserID: userID}

	return c.do(ctx, call{
		op:     OpCreateUserDetails,
		method: http.MethodPost,
		path:   "/user-details",
		token:  token,
		body:   payload,
		accept: []int{http.StatusOK, http.StatusCreated},
	})
}

// UpdateUserDetails はプロフィール全体を更新する。
func (c *Client) UpdateUserDetails(ctx context.Context, token string, profile model.UserProfile) error {
	profile.BMI = nil
	return c.do(ctx, call{
		op:     OpUpdateUserDetails,
		method: http.MethodPatch,
		path:   "/user-details",
		token:  token,
		body:   profile,
		accept: []int{http.StatusOK, http.StatusCreated},
	})
}

// CreateFoodLog は食事記録を作成する。entry.UserIDは呼び出し元が設定する。
func (c *Client) CreateFoodLog(ctx context.Context, token string, entry model.FoodLogEntry) error {
	entry.ID = ""
	return c.do(ctx, call{
		op:     OpCreateFoodLog,
		method: http.MethodPost,
		path:   "/food-log",
		token:  token,
		body:   entry,
		accept: []int{http.StatusCreated},
	})
}

// ListFoodLogs は全ての食事記録を取得する。
func (c *Client) ListFoodLogs(ctx context.Context, token string) ([]model.FoodLogEntry, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		op:     OpListFoodLogs,
		method: http.MethodGet,
		path:   "/food-log",
		token:  token,
		accept: []int{http.StatusOK},
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodeLogs(OpListFoodLogs, raw)
}

// LatestFoodLogs は直近days日分の食事記録を取得する。
func (c *Client) LatestFoodLogs(ctx context.Context, token string, days int) ([]model.FoodLogEntry, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		op:     OpLatestFoodLogs,
		method: http.MethodGet,
		path:   "/food-log/latest/",
		query:  url.Values{"days": {strconv.Itoa(days)}},
		token:  token,
		accept: []int{http.StatusOK},
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodeLogs(OpLatestFoodLogs, raw)
}

// DeleteFoodLog は指定IDの食事記録を削除する。
func (c *Client) DeleteFoodLog(ctx context.Context, token string, id model.LogID) error {
	return c.do(ctx, call{
		op:     OpDeleteFoodLog,
		method: http.MethodDelete,
		path:   "/food-log/" + url.PathEscape(string(id)),
		token:  token,
		accept: []int{http.StatusOK},
	})
}

// NutritionSummary は平均摂取量と推奨摂取量を取得する。
func (c *Client) NutritionSummary(ctx context.Context, token string) (*model.NutrientSummary, error) {
	var summary model.NutrientSummary
	err := c.do(ctx, call{
		op:     OpNutritionSummary,
		method: http.MethodGet,
		path:   "/food-log/nutrition-summary/",
		token:  token,
		accept: []int{http.StatusOK},
		out:    &summary,
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// PredictDiet はプロフィールから食事推奨を取得する。
// recommendationが文字列でない場合はJSON表現をそのまま返す。空の場合は空文字列。
func (c *Client) PredictDiet(ctx context.Context, token string, profile model.UserProfile) (string, error) {
	var resp struct {
		Recommendation json.RawMessage `json:"recommendation"`
	}
	err := c.do(ctx, call{
		op:     OpPredictDiet,
		method: http.MethodPost,
		path:   "/predict/diet",
		token:  token,
		body:   profile,
		accept: []int{http.StatusOK},
		out:    &resp,
	})
	if err != nil {
		return "", err
	}

	rec := bytes.TrimSpace(resp.Recommendation)
	if len(rec) == 0 || bytes.Equal(rec, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(rec, &s); err == nil {
		return s, nil
	}
	return string(rec), nil
}

// do はリクエストを送信し、ステータスを検証してレスポンスをデコードする。
func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return fmt.Errorf("backend %s: failed to build request: %w", cl.op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timeout := isTimeout(err)
		outcome := metrics.OutcomeConnectivity
		if timeout {
			outcome = metrics.OutcomeTimeout
		}
		c.finish(cl.op, outcome, start, 0, slog.LevelWarn, err)
		return &ConnectivityError{Op: cl.op, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		timeout := isTimeout(err)
		outcome := metrics.OutcomeConnectivity
		if timeout {
			outcome = metrics.OutcomeTimeout
		}
		c.finish(cl.op, outcome, start, resp.StatusCode, slog.LevelWarn, err)
		return &ConnectivityError{Op: cl.op, Timeout: timeout, Err: err}
	}

	if !accepted(resp.StatusCode, cl.accept) {
		rej := &RejectedError{
			Op:         cl.op,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
			Body:       truncate(string(body), maxErrorBody),
		}
		c.finish(cl.op, metrics.OutcomeRejected, start, resp.StatusCode, slog.LevelWarn, nil)
		return rej
	}

	if cl.out != nil {
		if err := json.Unmarshal(body, cl.out); err != nil {
			c.finish(cl.op, metrics.OutcomeDecodeError, start, resp.StatusCode, slog.LevelError, err)
			return fmt.Errorf("backend %s: failed to decode response: %w", cl.op, err)
		}
	}

	c.finish(cl.op, metrics.OutcomeSuccess, start, resp.StatusCode, slog.LevelDebug, nil)
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case cl.form != nil:
		body = strings.NewReader(cl.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case cl.body != nil:
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	return req, nil
}

// finish は呼び出し結果をログとメトリクスに記録する。トークンやパスワードは記録しない。
func (c *Client) finish(op, outcome string, start time.Time, status int, level slog.Level, err error) {
	duration := time.Since(start)
	c.recorder.RecordBackendCall(op, outcome, duration)

	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.String("outcome", outcome),
		slog.Int("status", status),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(context.Background(), level, "backend call", attrs...)
}

func accepted(status int, accept []int) bool {
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// decodeLogs は{data:[...]}形式と配列形式の両方から食事記録を読み取る。
func decodeLogs(op string, raw json.RawMessage) ([]model.FoodLogEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []model.FoodLogEntry{}, nil
	}

	if raw[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("backend %s: failed to decode response: %w", op, err)
		}
		raw = bytes.TrimSpace(envelope.Data)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return []model.FoodLogEntry{}, nil
		}
	}

	var entries []model.FoodLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("backend %s: failed to decode response: %w", op, err)
	}
	if entries == nil {
		entries = []model.FoodLogEntry{}
	}
	return entries, nil
}

// flexString は数値と文字列の両方を受け付ける文字列。
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var id model.LogID
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexString(id)
	return nil
}

var _ Gateway = (*Client)(nil)
