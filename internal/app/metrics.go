package app

import (
	"net/http"
	"net/http/pprof"

	client_prometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ton-connect/timeserver/internal"
)

var (
	TokenUsageMetric = promauto.NewCounterVec(client_prometheus.CounterOpts{
		Name: "timeserver_token_usage",
	}, []string{"token"})

	NTPReachableMetric = client_prometheus.NewGauge(client_prometheus.GaugeOpts{
		Name: "timeserver_ntp_reachable",
		Help: "Whether the default NTP server answered the last health check (1 = reachable, 0 = unreachable)",
	})

	VersionMetric = client_prometheus.NewGaugeVec(client_prometheus.GaugeOpts{
		Name: "timeserver_version_info",
		Help: "Version information of the timeserver",
	}, []string{"version", "transport"})
)

// InitMetrics registers all Prometheus metrics and sets version info
func InitMetrics(transport string) {
	client_prometheus.MustRegister(NTPReachableMetric)
	client_prometheus.MustRegister(VersionMetric)
	VersionMetric.WithLabelValues(internal.TimeserverVersionRevision, transport).Set(1)
}

// NewMetricsMux serves health, version, metrics and optionally pprof.
func NewMetricsMux(health *HealthManager, pprofEnabled bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", http.HandlerFunc(health.HealthHandler))
	mux.Handle("/ready", http.HandlerFunc(health.HealthHandler))
	mux.Handle("/version", http.HandlerFunc(VersionHandler))
	mux.Handle("/metrics", promhttp.Handler())
	if pprofEnabled {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
	}
	return mux
}
