package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and payment flows.
type BookingMetrics struct {
	wizardsStarted prometheus.Counter
	appointments   *prometheus.CounterVec
	payments       *prometheus.CounterVec
	paymentLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		wizardsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careport",
			Subsystem: "booking",
			Name:      "wizards_started_total",
			Help:      "Total booking wizards started",
		}),
		appointments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careport",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Total appointment create attempts",
		}, []string{"status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careport",
			Subsystem: "payments",
			Name:      "operations_total",
			Help:      "Total payment orchestration operations",
		}, []string{"stage", "status"}),
		paymentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careport",
			Subsystem: "payments",
			Name:      "operation_latency_seconds",
			Help:      "Latency of payment orchestration stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.wizardsStarted, m.appointments, m.payments, m.paymentLatency)
	return m
}

func (m *BookingMetrics) ObserveWizardStarted() {
	if m == nil {
		return
	}
	m.wizardsStarted.Inc()
}

func (m *BookingMetrics) ObserveAppointment(status string) {
	if m == nil {
		return
	}
	m.appointments.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObservePayment(stage, status string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(stage, status).Inc()
}

func (m *BookingMetrics) ObservePaymentLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.paymentLatency.WithLabelValues(stage).Observe(seconds)
}
