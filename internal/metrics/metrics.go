// metrics — Prometheus-метрики HTTP-клиентов: запросы, латентность, in-flight
// (через promhttp-инструментацию RoundTripper), исходы refresh и число повторов.
//
// Все методы безопасны для nil *Metrics: метрики можно отключить, не меняя вызывающий код.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expense_client"

type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  *prometheus.GaugeVec
	refreshes *prometheus.CounterVec
	retries   prometheus.Counter
}

// New регистрирует метрики в reg (prometheus.DefaultRegisterer в бинарнике,
// отдельный prometheus.NewRegistry() в тестах).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests sent by API clients, by client, status code and method.",
		}, []string{"client", "code", "method"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency of API clients.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "method"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently in flight, by client.",
		}, []string{"client"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Session refreshes triggered by 401 responses, by outcome.",
		}, []string{"outcome"}),
		retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Requests re-issued after a successful refresh.",
		}),
	}
}

// InstrumentTransport оборачивает rt счётчиком, гистограммой и in-flight для клиента client.
// nil rt означает http.DefaultTransport.
func (m *Metrics) InstrumentTransport(client string, rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if m == nil {
		return rt
	}

	labels := prometheus.Labels{"client": client}

	return promhttp.InstrumentRoundTripperInFlight(m.inFlight.WithLabelValues(client),
		promhttp.InstrumentRoundTripperCounter(m.requests.MustCurryWith(labels),
			promhttp.InstrumentRoundTripperDuration(m.duration.MustCurryWith(labels), rt),
		),
	)
}

// ObserveRefresh учитывает исход refresh ("ok" | "failed").
func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}

	m.refreshes.WithLabelValues(outcome).Inc()
}

// ObserveRetry учитывает повтор запроса после refresh.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}

	m.retries.Inc()
}
