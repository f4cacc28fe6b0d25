package metrics

import "github.com/prometheus/client_golang/prometheus"

// GatewayMetrics exposes counters/histograms for calls to the external
// automation endpoint.
type GatewayMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total requests sent to the automation endpoint",
		}, []string{"action", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "gateway",
			Name:      "request_latency_seconds",
			Help:      "Latency of automation endpoint calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

func (m *GatewayMetrics) ObserveRequest(action, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(action, status).Inc()
	m.requestLatency.WithLabelValues(action).Observe(seconds)
}

// BookingMetrics counts public booking flow activity.
type BookingMetrics struct {
	quotesTotal    prometheus.Counter
	checkoutsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		quotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "quotes_total",
			Help:      "Total price quotes computed",
		}),
		checkoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "checkouts_total",
			Help:      "Total checkout dispatch attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.quotesTotal, m.checkoutsTotal)
	return m
}

func (m *BookingMetrics) ObserveQuote() {
	if m == nil {
		return
	}
	m.quotesTotal.Inc()
}

func (m *BookingMetrics) ObserveCheckout(status string) {
	if m == nil {
		return
	}
	m.checkoutsTotal.WithLabelValues(status).Inc()
}
