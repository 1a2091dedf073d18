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
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordJobCreated(jobType string)
	RecordApplicationSubmitted()
	RecordDuplicateApplication()
	RecordStatusUpdated(status string)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests          *prometheus.CounterVec
	httpDuration          *prometheus.HistogramVec
	jobsCreated           *prometheus.CounterVec
	applicationsSubmitted prometheus.Counter
	duplicateApplications prometheus.Counter
	statusUpdates         *prometheus.CounterVec
	sessionsCleaned       prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobportal_http_request_duration_seconds",
			Help:    "ルート別のHTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_jobs_created_total",
			Help: "雇用形態別の求人作成数",
		}, []string{"job_type"}),
		applicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobportal_applications_submitted_total",
			Help: "受け付けた応募の合計数",
		}),
		duplicateApplications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobportal_applications_duplicate_total",
			Help: "重複として拒否した応募の合計数",
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_application_status_updates_total",
			Help: "更新後の状態別の応募状態更新数",
		}, []string{"status"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobportal_sessions_cleaned_total",
			Help: "クリーンアップで削除した期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.jobsCreated,
		c.applicationsSubmitted,
		c.duplicateApplications,
		c.statusUpdates,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeはchiのルートパターン（例: /api/jobs/{jobId}）を渡し、ラベルの濃度を抑える。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordJobCreated は求人作成を記録する。
func (c *Collector) RecordJobCreated(jobType string) {
	c.jobsCreated.WithLabelValues(jobType).Inc()
}

// RecordApplicationSubmitted は応募の受付を記録する。
func (c *Collector) RecordApplicationSubmitted() {
	c.applicationsSubmitted.Inc()
}

// RecordDuplicateApplication は重複応募の拒否を記録する。
func (c *Collector) RecordDuplicateApplication() {
	c.duplicateApplications.Inc()
}

// RecordStatusUpdated は応募状態の更新を記録する。
func (c *Collector) RecordStatusUpdated(status string) {
	c.statusUpdates.WithLabelValues(status).Inc()
}

// RecordSessionsCleaned は削除したセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
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
