package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBooking("confirmed", "virtual")
	m.ObserveBooking("rejected", "personal")
	m.ObserveCancellation("cancelled")
	m.ObserveBookingLatency(0.25)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var bookings *dto.MetricFamily
	for _, fam := range families {
		if fam.GetName() == "bookmydoc_appointments_bookings_total" {
			bookings = fam
		}
	}
	if bookings == nil {
		t.Fatal("expected bookings counter to be registered")
	}
	if len(bookings.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(bookings.GetMetric()))
	}
}

func TestChatMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)
	m.ObserveRequest("ok")
	m.ObserveRequest("fallback")
}

func TestMetricsNilSafe(t *testing.T) {
	var b *BookingMetrics
	b.ObserveBooking("confirmed", "virtual")
	b.ObserveCancellation("rejected")
	b.ObserveBookingLatency(0.1)

	var c *ChatMetrics
	c.ObserveRequest("ok")

	var w *WebhookMetrics
	w.ObserveIdentity("user.created", "ok")
}
