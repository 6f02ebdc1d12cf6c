package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/keyverify/internal/registry"
)

const metricsNamespace = "keyverify"

// Metrics holds the service collectors on a dedicated registry.
type Metrics struct {
	registry      *prometheus.Registry
	verifications *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// NewMetrics registers the service collectors. The key and log gauges read
// store on every scrape.
func NewMetrics(store *registry.Store) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "verifications_total",
				Help:      "Verification requests by result.",
			},
			[]string{"result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern and status code.",
			},
			[]string{"route", "code"},
		),
	}

	reg.MustRegister(
		m.verifications,
		m.requests,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "registry_keys",
				Help:      "Keys currently in the registry.",
			},
			func() float64 { return float64(store.Keys().Len()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "log_entries",
				Help:      "Entries currently retained by the verification log.",
			},
			func() float64 { return float64(store.Log().Len()) },
		),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeVerification(result registry.Result) {
	m.verifications.WithLabelValues(string(result)).Inc()
}

func (m *Metrics) observeRequest(route string, status int) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
