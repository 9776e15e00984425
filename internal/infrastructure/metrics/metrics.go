// Package metrics expone los contadores Prometheus del servicio en /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics colectores del servicio sobre un registry propio.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	InvoicesComputed    *prometheus.CounterVec
	TransfersTransition *prometheus.CounterVec
	AdjustmentsApplied  *prometheus.CounterVec
	AdjustmentFailures  *prometheus.CounterVec
	BreakerState        *prometheus.GaugeVec
}

// Config espacio de nombres de las métricas.
type Config struct {
	Namespace string
}

// New crea y registra los colectores.
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "ledger"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP atendidas",
	}, []string{"method", "route", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})

	m.InvoicesComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "invoices_computed_total",
		Help:      "Cálculos de factura por operación y resultado",
	}, []string{"operation", "outcome"})

	m.TransfersTransition = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "transfer_transitions_total",
		Help:      "Traslados que alcanzaron cada estado",
	}, []string{"status"})

	m.AdjustmentsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "stock_adjustments_total",
		Help:      "Ajustes de stock aplicados por lado del traslado",
	}, []string{"side"})

	m.AdjustmentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "stock_adjustment_failures_total",
		Help:      "Ajustes de stock fallidos por lado del traslado",
	}, []string{"side"})

	m.BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "circuit_breaker_state",
		Help:      "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.InvoicesComputed, m.TransfersTransition,
		m.AdjustmentsApplied, m.AdjustmentFailures,
		m.BreakerState,
	)
	return m
}

// Handler handler net/http para montar en /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry registry interno (pruebas).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) InvoiceComputed(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.InvoicesComputed.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) TransferTransition(status string) {
	if m == nil {
		return
	}
	m.TransfersTransition.WithLabelValues(status).Inc()
}

// Reconciliation registra ajustes exitosos (dos por ítem) y fallas por lado.
func (m *Metrics) Reconciliation(succeededItems int, failedSides []string) {
	if m == nil {
		return
	}
	if succeededItems > 0 {
		m.AdjustmentsApplied.WithLabelValues("source").Add(float64(succeededItems))
		m.AdjustmentsApplied.WithLabelValues("destination").Add(float64(succeededItems))
	}
	for _, side := range failedSides {
		m.AdjustmentFailures.WithLabelValues(side).Inc()
	}
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}
