package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "familyatlas_geocode_requests_total",
		Help: "Total outbound geocoding lookups",
	})
	GeocodeSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "familyatlas_geocode_success_total",
		Help: "Total geocoding lookups returning at least one candidate",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "familyatlas_geocode_fail_total",
		Help: "Total geocoding lookups failing (network, status or decode)",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "familyatlas_geocode_duration_ms",
		Help:    "Geocoding lookup duration in milliseconds",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	GeocodeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "familyatlas_geocode_cache_total",
		Help: "Geocoding cache lookups by tier and result",
	}, []string{"tier", "result"})
	GeocodeFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "familyatlas_geocode_fallback_total",
		Help: "Total city/country fallback lookups",
	})
	ImportEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "familyatlas_import_events_total",
		Help: "Derived events by import outcome",
	}, []string{"outcome"})
	ImportDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "familyatlas_import_duration_ms",
		Help:    "Whole import duration in milliseconds",
		Buckets: []float64{10, 100, 1000, 10000, 60000, 300000, 900000},
	})
)

func init() {
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeSuccessTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(GeocodeFallbackTotal)
	prometheus.MustRegister(ImportEventsTotal)
	prometheus.MustRegister(ImportDurationMs)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：CLI 在长时间导入期间可选地在 METRICS_ADDR 暴露 /metrics。
func Handler() http.Handler { return promhttp.Handler() }
