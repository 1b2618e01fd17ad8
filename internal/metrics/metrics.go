// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// バックエンド呼び出しの結果区分。
const (
	OutcomeSuccess      = "success"
	OutcomeRejected     = "rejected"
	OutcomeConnectivity = "connectivity"
	OutcomeTimeout      = "timeout"
	OutcomeDecodeError  = "decode_error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// バックエンドゲートウェイ、ミドルウェア、セッションマネージャーから利用する。
type MetricsCollector interface {
	RecordBackendCall(operation, outcome string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordSessionTransition(transition string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	httpStatus      *prometheus.CounterVec
	sessions        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriapp_backend_requests_total",
			Help: "バックエンド呼び出しの操作別・結果別の合計数",
		}, []string{"operation", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutriapp_backend_request_duration_seconds",
			Help:    "バックエンド呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriapp_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriapp_session_transitions_total",
			Help: "セッション状態遷移の合計数",
		}, []string{"transition"}),
	}

	reg.MustRegister(
		c.backendRequests,
		c.backendLatency,
		c.httpStatus,
		c.sessions,
	)

	return c
}

// RecordBackendCall はバックエンド呼び出しの結果とレイテンシを記録する。
func (c *Collector) RecordBackendCall(operation, outcome string, duration time.Duration) {
	c.backendRequests.WithLabelValues(operation, outcome).Inc()
	c.backendLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionTransition はセッション状態遷移を記録する。
func (c *Collector) RecordSessionTransition(transition string) {
	c.sessions.WithLabelValues(transition).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type NopCollector struct{}

func (NopCollector) RecordBackendCall(string, string, time.Duration) {}
func (NopCollector) RecordHTTPStatus(int)                            {}
func (NopCollector) RecordSessionTransition(string)                  {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
