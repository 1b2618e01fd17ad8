package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/config"
	"github.com/hitoshi/nutriapp/internal/database"
	"github.com/hitoshi/nutriapp/internal/handler"
	"github.com/hitoshi/nutriapp/internal/logger"
	"github.com/hitoshi/nutriapp/internal/metrics"
	"github.com/hitoshi/nutriapp/internal/middleware"
	"github.com/hitoshi/nutriapp/internal/repository"
	"github.com/hitoshi/nutriapp/internal/security"
	"github.com/hitoshi/nutriapp/internal/session"
	"github.com/hitoshi/nutriapp/internal/view"
	"github.com/hitoshi/nutriapp/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("session_store", cfg.SessionStore),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// openSessionRepo はSESSION_STOREに応じたセッションリポジトリを生成する。
// データベースを使う場合は接続確認とマイグレーションを行い、*sql.DBも返す。
func openSessionRepo(cfg *config.Config) (repository.SessionRepository, *sql.DB, error) {
	var driver string
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		driver = database.DriverPostgres
	case config.SessionStoreSQLite:
		driver = database.DriverSQLite
	default:
		return repository.NewMemorySessionRepo(), nil, nil
	}

	db, err := database.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established", slog.String("driver", driver))

	if err := database.RunMigrations(driver, cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	if driver == database.DriverSQLite {
		return repository.NewSQLiteSessionRepo(db), db, nil
	}
	return repository.NewPostgresSessionRepo(db), db, nil
}

// newRouter は設定から全依存関係をワイヤリングしたルーターを構築する。
// 返すcleanup関数でレートリミッターを停止する。
func newRouter(cfg *config.Config, repo repository.SessionRepository, log *slog.Logger) (http.Handler, func(), error) {
	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// 2. バックエンドクライアント
	httpClient, err := security.NewBackendHTTPClient(cfg.BackendURL, cfg.BackendTimeout, cfg.BackendBlockPrivate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid backend configuration: %w", err)
	}
	gateway := backend.NewClient(backend.ClientConfig{
		BaseURL:        cfg.BackendURL,
		BootstrapToken: cfg.BackendBootstrapToken,
	}, httpClient, log, collector)

	// 3. 画面と描画
	views := view.New(gateway, security.NewContentSanitizer(), log)
	renderer, err := handler.NewRenderer(log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// 4. セッションとミドルウェア
	sessions := session.NewManager(repo, session.ManagerConfig{
		MaxAge:       cfg.SessionTTL(),
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
		Recorder:     collector,
	})
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth, cfg.TrustProxyHeaders),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:        log,
		Sessions:      sessions,
		RateLimiter:   rateLimiter,
		CSRF:          middleware.CSRFConfig{CookieSecure: cfg.CookieSecure, CookieDomain: cfg.CookieDomain},
		StatusMetrics: collector,

		Views:    views,
		Renderer: renderer,

		HealthChecker:  repo,
		MetricsHandler: metrics.Handler(reg),
	})
	return router, rateLimiter.Stop, nil
}

// runServe はWebサーバーモードで起動する。
// セッションストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	log := slog.Default()

	// 1. セッションストア
	repo, db, err := openSessionRepo(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// 2. ルーター
	router, stopLimiter, err := newRouter(cfg, repo, log)
	if err != nil {
		return err
	}
	defer stopLimiter()

	// 3. 期限切れセッションの定期削除
	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()
	go cleanup.NewCleanupJob(repo, log).Start(jobCtx, cfg.SessionCleanupInterval)

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はセッションストアのマイグレーションを実行する。
// メモリストアの場合は何もしない。
func runMigrate(cfg *config.Config) error {
	var driver string
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		driver = database.DriverPostgres
	case config.SessionStoreSQLite:
		driver = database.DriverSQLite
	default:
		slog.Info("memory session store needs no migrations")
		return nil
	}

	slog.Info("running database migrations",
		slog.String("driver", driver),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(driver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
// URLとして解釈できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.Redacted()
}
