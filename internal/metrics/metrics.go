// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordGateDecision(outcome string)
	RecordHTTPStatus(statusCode int)
	IncLoginAttempt(success bool)
	ObserveFeedQuery(duration time.Duration, itemCount int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	gateDecisions    *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	loginAttempts    *prometheus.CounterVec
	feedQueryLatency prometheus.Histogram
	feedItemsServed  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citizenly_gate_decisions_total",
			Help: "セッションゲート判定の結果別合計数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citizenly_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citizenly_login_attempts_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		feedQueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "citizenly_feed_query_latency_seconds",
			Help:    "フィード検索クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		feedItemsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "citizenly_feed_items_served_total",
			Help: "配信されたフィードアイテムの合計数",
		}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.httpStatus,
		c.loginAttempts,
		c.feedQueryLatency,
		c.feedItemsServed,
	)

	return c
}

// RecordGateDecision はセッションゲートの判定結果を記録する。
func (c *Collector) RecordGateDecision(outcome string) {
	c.gateDecisions.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// IncLoginAttempt はログイン試行を記録する。
func (c *Collector) IncLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// ObserveFeedQuery はフィード検索のレイテンシと配信件数を記録する。
func (c *Collector) ObserveFeedQuery(duration time.Duration, itemCount int) {
	c.feedQueryLatency.Observe(duration.Seconds())
	c.feedItemsServed.Add(float64(itemCount))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
