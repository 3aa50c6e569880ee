package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeConfigError     = "config_error"
	OutcomeProviderError   = "provider_error"
)

// MessagingMetrics exposes counters/histograms for the send and callback flows.
type MessagingMetrics struct {
	requestsTotal   *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsapp",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total send and callback requests by outcome",
		}, []string{"endpoint", "outcome"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsapp",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total provider send attempts by destination region",
		}, []string{"endpoint", "region", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "whatsapp",
			Subsystem: "messaging",
			Name:      "provider_latency_seconds",
			Help:      "Latency of the provider send call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.outboundTotal, m.providerLatency)
	return m
}

func (m *MessagingMetrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *MessagingMetrics) ObserveOutbound(endpoint, region string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.outboundTotal.WithLabelValues(endpoint, region, status).Inc()
}

func (m *MessagingMetrics) ObserveProviderLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RequestCounter returns the request counter child for one endpoint/outcome pair.
func (m *MessagingMetrics) RequestCounter(endpoint, outcome string) prometheus.Counter {
	return m.requestsTotal.WithLabelValues(endpoint, outcome)
}
