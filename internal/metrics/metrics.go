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
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordNearbyResults(count int)
	RecordFollowCreated()
	RecordFollowConflict()
	RecordRecommendation(peers, restaurants int)
}

// countBuckets は検索結果件数用のヒストグラムバケット。
var countBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus           *prometheus.CounterVec
	requestLatency       prometheus.Histogram
	nearbyResults        prometheus.Histogram
	followCreated        prometheus.Counter
	followConflict       prometheus.Counter
	recommendPeers       prometheus.Histogram
	recommendRestaurants prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealmap_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealmap_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		nearbyResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealmap_nearby_results",
			Help:    "近隣検索で返されたレストラン数",
			Buckets: countBuckets,
		}),
		followCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealmap_follow_created_total",
			Help: "作成されたフォローの合計数",
		}),
		followConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mealmap_follow_conflict_total",
			Help: "重複により拒否されたフォローの合計数",
		}),
		recommendPeers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealmap_recommend_peers",
			Help:    "おすすめ算出時に見つかった類似ユーザー数",
			Buckets: countBuckets,
		}),
		recommendRestaurants: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealmap_recommend_restaurants",
			Help:    "おすすめとして返されたレストラン数",
			Buckets: countBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.nearbyResults,
		c.followCreated,
		c.followConflict,
		c.recommendPeers,
		c.recommendRestaurants,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordNearbyResults は近隣検索の結果件数を記録する。
func (c *Collector) RecordNearbyResults(count int) {
	c.nearbyResults.Observe(float64(count))
}

// RecordFollowCreated はフォロー作成を記録する。
func (c *Collector) RecordFollowCreated() {
	c.followCreated.Inc()
}

// RecordFollowConflict は重複フォローの拒否を記録する。
func (c *Collector) RecordFollowConflict() {
	c.followConflict.Inc()
}

// RecordRecommendation はおすすめ算出の類似ユーザー数とレストラン数を記録する。
func (c *Collector) RecordRecommendation(peers, restaurants int) {
	c.recommendPeers.Observe(float64(peers))
	c.recommendRestaurants.Observe(float64(restaurants))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
