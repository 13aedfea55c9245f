package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the appointment flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmydoc",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"status", "type"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmydoc",
			Subsystem: "appointments",
			Name:      "cancellations_total",
			Help:      "Total cancellation attempts",
		}, []string{"status"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookmydoc",
			Subsystem: "appointments",
			Name:      "booking_latency_seconds",
			Help:      "Latency of the booking fan-out write",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.bookingLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(status, appointmentType string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status, appointmentType).Inc()
}

func (m *BookingMetrics) ObserveCancellation(status string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveBookingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bookingLatency.Observe(seconds)
}

// ChatMetrics counts assistant chat requests and provider fallbacks.
type ChatMetrics struct {
	requestsTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmydoc",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total assistant chat requests",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal)
	return m
}

func (m *ChatMetrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// WebhookMetrics counts identity webhook deliveries by event type.
type WebhookMetrics struct {
	identityTotal *prometheus.CounterVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		identityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmydoc",
			Subsystem: "identity",
			Name:      "webhook_total",
			Help:      "Total identity provider webhooks",
		}, []string{"event_type", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.identityTotal)
	return m
}

func (m *WebhookMetrics) ObserveIdentity(eventType, status string) {
	if m == nil {
		return
	}
	m.identityTotal.WithLabelValues(eventType, status).Inc()
}
