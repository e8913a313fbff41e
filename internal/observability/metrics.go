package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// Metrics holds the process collectors. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiLatency      *prometheus.HistogramVec
	apiInflight     prometheus.Gauge
	featureOutcomes *prometheus.CounterVec
	externalCalls   *prometheus.CounterVec
	externalLatency *prometheus.HistogramVec
	usageIncrements *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorai_api_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorai_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "creatorai_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		featureOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorai_feature_requests_total",
			Help: "Feature pipeline outcomes.",
		}, []string{"feature", "plan", "outcome"}),
		externalCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorai_external_calls_total",
			Help: "Outbound provider calls by provider, operation and status.",
		}, []string{"provider", "operation", "status"}),
		externalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorai_external_call_duration_seconds",
			Help:    "Outbound provider call latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider", "operation"}),
		usageIncrements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorai_usage_increments_total",
			Help: "Free-tier counter write-backs by feature and result.",
		}, []string{"feature", "result"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncFeatureOutcome(feature, plan, outcome string) {
	if m == nil {
		return
	}
	m.featureOutcomes.WithLabelValues(feature, plan, outcome).Inc()
}

// ObserveExternalCall records one outbound provider call. status is "ok" or an error class.
func (m *Metrics) ObserveExternalCall(provider, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(provider, operation, status).Inc()
	m.externalLatency.WithLabelValues(provider, operation).Observe(dur.Seconds())
}

func (m *Metrics) IncUsageIncrement(feature, result string) {
	if m == nil {
		return
	}
	m.usageIncrements.WithLabelValues(feature, result).Inc()
}

// StartServer serves /metrics on its own listener until ctx is cancelled.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) error {
	if m == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
