package ntp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK      = "ok"
	resultError   = "error"
	resultInvalid = "invalid"
)

var (
	queriesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeserver_ntp_queries_total",
		Help: "The total number of NTP queries by result",
	}, []string{"result"})
	queryDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timeserver_ntp_query_duration_seconds",
		Help:    "Round trip of a single NTP query, including failures",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})
)
