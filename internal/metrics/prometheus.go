package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookout_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lookout_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookout_llm_requests_total",
		Help: "Total LLM requests",
	}, []string{"model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lookout_llm_request_duration_seconds",
		Help:    "LLM request duration until stream end",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"model"})

	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookout_search_requests_total",
		Help: "Total web search requests",
	}, []string{"backend", "status"})

	StreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lookout_streams_active",
		Help: "Number of chat streams currently open",
	})

	TurnsPerRequest = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lookout_turns_per_request",
		Help:    "Provider turns taken to answer one chat request",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})
)
