package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal       *prometheus.CounterVec
	processDuration    *prometheus.HistogramVec
	processInFlight    prometheus.Gauge
	extractionDuration *prometheus.HistogramVec
	classifyDuration   *prometheus.HistogramVec
	condenseTotal      *prometheus.CounterVec
	queueLag           *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docingest",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docingest",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docingest",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docingest",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Text extraction duration in seconds by strategy.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "strategy", "status"},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docingest",
			Subsystem: "classification",
			Name:      "duration_seconds",
			Help:      "Zero-shot classification duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	condenseTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docingest",
			Subsystem: "classification",
			Name:      "condense_total",
			Help:      "Total condensation attempts on oversized inputs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docingest",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document creation and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		extractionDuration,
		classifyDuration,
		condenseTotal,
		queueLag,
	)

	return &WorkerMetrics{
		registry:           registry,
		processTotal:       processTotal,
		processDuration:    processDuration,
		processInFlight:    processInFlight,
		extractionDuration: extractionDuration,
		classifyDuration:   classifyDuration,
		condenseTotal:      condenseTotal,
		queueLag:           queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveExtraction(service, strategy string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	if strategy == "" {
		strategy = "unknown"
	}
	m.extractionDuration.WithLabelValues(service, strategy, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveClassification(service string, duration time.Duration, classified bool) {
	status := "classified"
	if !classified {
		status = "error"
	}
	m.classifyDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// RecordCondensation outcomes: "summarized" when the summarizer produced the
// condensed text, "truncated" when the fallback ran instead.
func (m *WorkerMetrics) RecordCondensation(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.condenseTotal.WithLabelValues(service, outcome).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

// Observer pins the service label so processing code can report per-stage
// timings without knowing about the collectors.
type Observer struct {
	metrics *WorkerMetrics
	service string
}

func (m *WorkerMetrics) Observer(service string) *Observer {
	return &Observer{metrics: m, service: service}
}

func (o *Observer) ObserveExtraction(strategy string, duration time.Duration, success bool) {
	o.metrics.ObserveExtraction(o.service, strategy, duration, success)
}

func (o *Observer) ObserveClassification(duration time.Duration, classified bool) {
	o.metrics.ObserveClassification(o.service, duration, classified)
}

func (o *Observer) RecordCondensation(outcome string) {
	o.metrics.RecordCondensation(o.service, outcome)
}
