package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	pipelineRunsTotal       *prometheus.CounterVec
	pipelineFailuresTotal   *prometheus.CounterVec
	pipelineDurationSeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors for the API surface
// and the evaluation pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackeval_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackeval_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackeval_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		pipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackeval_pipeline_runs_total",
			Help: "Total number of evaluation pipeline runs by outcome.",
		}, []string{"outcome"})

		pipelineFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackeval_pipeline_failures_total",
			Help: "Pipeline failures broken down by the stage that failed.",
		}, []string{"stage"})

		pipelineDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hackeval_pipeline_duration_seconds",
			Help:    "End-to-end duration of evaluation pipeline runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			pipelineRunsTotal,
			pipelineFailuresTotal,
			pipelineDurationSeconds,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// PipelineRuns exposes the per-outcome pipeline run counter.
func PipelineRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return pipelineRunsTotal
}

// PipelineFailures exposes the per-stage pipeline failure counter.
func PipelineFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return pipelineFailuresTotal
}

// PipelineDuration exposes the pipeline duration histogram.
func PipelineDuration() prometheus.Histogram {
	RegisterMetrics()
	return pipelineDurationSeconds
}
