package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMessagingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMessagingMetrics(reg)
	m.ObserveRequest("send_whatsapp", OutcomeSuccess)
	m.ObserveRequest("send_whatsapp", OutcomeSuccess)
	m.ObserveOutbound("send_whatsapp", "FR", true)
	m.ObserveProviderLatency("send_whatsapp", 0.5)

	var metric dto.Metric
	if err := m.requestsTotal.WithLabelValues("send_whatsapp", OutcomeSuccess).Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}

func TestMessagingMetricsDefaultRegistry(t *testing.T) {
	m := NewMessagingMetrics(nil)
	m.ObserveOutbound("request_callback", "unknown", false)
	prometheus.DefaultRegisterer.Unregister(m.requestsTotal)
	prometheus.DefaultRegisterer.Unregister(m.outboundTotal)
	prometheus.DefaultRegisterer.Unregister(m.providerLatency)
}

func TestMessagingMetricsNilSafe(t *testing.T) {
	var m *MessagingMetrics
	m.ObserveRequest("send_whatsapp", OutcomeConfigError)
	m.ObserveOutbound("send_whatsapp", "US", false)
	m.ObserveProviderLatency("send_whatsapp", 0.1)
}
