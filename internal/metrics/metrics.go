package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	EntriesCreated  *prometheus.CounterVec
	EntriesDeleted  prometheus.Counter
	WasteKg         *prometheus.CounterVec
	ChatReplies     *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "entries_created_total",
			Help:      "Waste entries stored, by category.",
		}, []string{"category"}),
		EntriesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "entries_deleted_total",
			Help:      "Waste entries deleted.",
		}),
		WasteKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "waste_kilograms_total",
			Help:      "Normalized kilograms logged, by reason.",
		}, []string{"reason"}),
		ChatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "chat_replies_total",
			Help:      "Chat replies, by the stage that produced them.",
		}, []string{"stage"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "events_published_total",
			Help:      "Entry events sent to the broker, by type and outcome.",
		}, []string{"type", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodwaste",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foodwaste",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EntriesCreated,
		m.EntriesDeleted,
		m.WasteKg,
		m.ChatReplies,
		m.EventsPublished,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) EntryCreated(category, reason string, kg float64) {
	if m == nil {
		return
	}
	m.EntriesCreated.WithLabelValues(category).Inc()
	m.WasteKg.WithLabelValues(reason).Add(kg)
}

func (m *Metrics) EntryDeleted() {
	if m == nil {
		return
	}
	m.EntriesDeleted.Inc()
}

func (m *Metrics) ChatReply(stage string) {
	if m == nil {
		return
	}
	m.ChatReplies.WithLabelValues(stage).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
