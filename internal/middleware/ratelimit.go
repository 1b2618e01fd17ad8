package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/nutriapp/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate       rate.Limit    // 全リクエストのレート（req/sec）
	GeneralBurst      int           // 全リクエストのバーストサイズ
	AuthRate          rate.Limit    // サインイン・サインアップ・アカウント削除のレート（req/sec）
	AuthBurst         int           // 認証系のバーストサイズ
	CleanupInterval   time.Duration // 期限切れエントリのクリーンアップ間隔
	TrustProxyHeaders bool          // X-Forwarded-For/X-Real-IPをクライアントIPとして使う
}

// NewRateLimiterConfig は1分あたりのリクエスト数からRateLimiterConfigを生成する。
// 0以下の値は既定値（全般120、認証系10）に置き換える。
func NewRateLimiterConfig(generalPerMinute, authPerMinute int, trustProxy bool) RateLimiterConfig {
	if generalPerMinute <= 0 {
		generalPerMinute = 120
	}
	if authPerMinute <= 0 {
		authPerMinute = 10
	}
	return RateLimiterConfig{
		GeneralRate:       rate.Limit(float64(generalPerMinute) / 60.0),
		GeneralBurst:      generalPerMinute,
		AuthRate:          rate.Limit(float64(authPerMinute) / 60.0),
		AuthBurst:         authPerMinute,
		CleanupInterval:   5 * time.Minute,
		TrustProxyHeaders: trustProxy,
	}
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return NewRateLimiterConfig(120, 10, false)
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet は同じレート設定を共有するクライアント別リミッターの集合。
type limiterSet struct {
	name  string
	rate  rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[string]*clientLimiter
}

func newLimiterSet(name string, r rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		name:     name,
		rate:     r,
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
}

// get はクライアントのリミッターを取得または作成する。
func (ls *limiterSet) get(key string) *rate.Limiter {
	ls.mu.RLock()
	cl, exists := ls.limiters[key]
	ls.mu.RUnlock()

	if exists {
		ls.mu.Lock()
		cl.lastAccess = time.Now()
		ls.mu.Unlock()
		return cl.limiter
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	// ダブルチェック
	if cl, exists := ls.limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(ls.rate, ls.burst)
	ls.limiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (ls *limiterSet) count() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.limiters)
}

func (ls *limiterSet) evictOlderThan(cutoff time.Time) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for key, cl := range ls.limiters {
		if cl.lastAccess.Before(cutoff) {
			delete(ls.limiters, key)
		}
	}
}

// RateLimiter はクライアントごとのレート制限を管理する。
// 全リクエスト向けと認証系フォーム送信向けの2種類を提供する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterSet
	auth    *limiterSet
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:  config,
		general: newLimiterSet("general", config.GeneralRate, config.GeneralBurst),
		auth:    newLimiterSet("auth", config.AuthRate, config.AuthBurst),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware は全リクエストに適用するレート制限ミドルウェアを返す。
// SessionMiddlewareの後に配置すると、認証済みユーザーはユーザーID単位で制限される。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general)
}

// AuthMiddleware はサインイン・サインアップ・アカウント削除の送信に適用するレート制限ミドルウェアを返す。
// 全般のレート制限とは独立に動作する。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.auth)
}

// GeneralLimiterCount は現在管理されている全般リミッターのエントリ数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// AuthLimiterCount は現在管理されている認証系リミッターのエントリ数を返す。
func (rl *RateLimiter) AuthLimiterCount() int {
	return rl.auth.count()
}

func (rl *RateLimiter) middleware(set *limiterSet) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.clientKey(r)
			if !set.get(key).Allow() {
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", set.name),
				)
				writeRateLimitResponse(w, r, set.rate)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey は認証済みならユーザーID、そうでなければクライアントIPをキーとして返す。
func (rl *RateLimiter) clientKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	return "ip:" + ClientIP(r, rl.config.TrustProxyHeaders)
}

// ClientIP はリクエスト元のIPアドレスを返す。
// trustProxyがtrueの場合はX-Forwarded-Forの先頭、次にX-Real-IPを優先する。
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * rl.config.CleanupInterval)
	rl.general.evictOlderThan(cutoff)
	rl.auth.evictOlderThan(cutoff)
}

// writeRateLimitResponse は429 Too Many Requestsを共通エラーページで書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r *http.Request, limit rate.Limit) {
	retryAfterSec := 1
	if limit > 0 {
		retryAfterSec = int(math.Ceil(1.0 / float64(limit)))
	}
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorPage(w, r, http.StatusTooManyRequests, model.NewRateLimitedError())
}
