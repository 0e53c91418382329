package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько заняла проверка целиком (включая AI-вызов)
	CheckDuration *prometheus.HistogramVec

	// Traffic: количество завершенных проверок по итоговому статусу
	ChecksTotal *prometheus.CounterVec

	// Errors: сколько раз AI-оценка деградировала в нейтральный fallback
	AIFallbackTotal prometheus.Counter

	// Saturation: состояние Circuit Breaker AI-провайдера (0 - ок, 1 - выбило)
	BreakerState prometheus.Gauge

	// Audit: заполненность буфера журнала (backpressure)
	AuditBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		CheckDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compliance_check_duration_seconds",
			Help:    "Histogram of compliance check latencies.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"status"}),

		ChecksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_checks_total",
			Help: "Total number of completed compliance checks.",
		}, []string{"status"}), // halal, haram, doubtful, error

		AIFallbackTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "compliance_ai_fallback_total",
			Help: "Number of checks that fell back to the neutral AI score.",
		}),

		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "compliance_ai_breaker_state",
			Help: "Current state of the AI provider circuit breaker (0=closed, 1=open).",
		}),

		AuditBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "compliance_audit_buffer_utilization",
			Help: "Current number of entries in the audit journal buffer.",
		}),
	}
}
