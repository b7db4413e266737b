// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLogin(provider string, success bool)
	RecordTokenValidation(valid bool)
	RecordListingSearch()
	RecordListingCreated()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins           *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	listingSearches  prometheus.Counter
	listingsCreated  prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihouse_logins_total",
			Help: "認証経路・結果別のログイン試行数",
		}, []string{"provider", "outcome"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihouse_token_validations_total",
			Help: "結果別のベアラートークン検証数",
		}, []string{"outcome"}),
		listingSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unihouse_listing_searches_total",
			Help: "掲示検索リクエストの合計数",
		}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unihouse_listings_created_total",
			Help: "作成された掲示の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihouse_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.tokenValidations,
		c.listingSearches,
		c.listingsCreated,
		c.httpStatus,
	)

	return c
}

// RecordLogin はログイン試行を認証経路・結果別に記録する。
func (c *Collector) RecordLogin(provider string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordTokenValidation はトークン検証の結果を記録する。
func (c *Collector) RecordTokenValidation(valid bool) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	c.tokenValidations.WithLabelValues(outcome).Inc()
}

// RecordListingSearch は掲示検索リクエストを記録する。
func (c *Collector) RecordListingSearch() {
	c.listingSearches.Inc()
}

// RecordListingCreated は掲示作成を記録する。
func (c *Collector) RecordListingCreated() {
	c.listingsCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
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
