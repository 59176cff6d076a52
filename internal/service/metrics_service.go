package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors for request
// traffic and booking outcomes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	bookingsAdmitted prometheus.Counter
	bookingConflicts prometheus.Counter
	whatsappSent     prometheus.Counter
	whatsappFailures prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookingsAdmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_admitted_total",
		Help: "Bookings accepted by the admission check",
	})

	bookingConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking submissions rejected because the slot was taken",
	})

	whatsappSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_messages_sent_total",
		Help: "WhatsApp confirmations delivered",
	})

	whatsappFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_send_failures_total",
		Help: "WhatsApp confirmation attempts that failed",
	})

	registry.MustRegister(requestDuration, requestTotal, bookingsAdmitted, bookingConflicts, whatsappSent, whatsappFailures)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		bookingsAdmitted: bookingsAdmitted,
		bookingConflicts: bookingConflicts,
		whatsappSent:     whatsappSent,
		whatsappFailures: whatsappFailures,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// RecordBookingAdmitted counts an accepted booking.
func (s *MetricsService) RecordBookingAdmitted() { s.bookingsAdmitted.Inc() }

// RecordBookingConflict counts a slot-already-booked rejection.
func (s *MetricsService) RecordBookingConflict() { s.bookingConflicts.Inc() }

// RecordWhatsAppSent counts a delivered confirmation.
func (s *MetricsService) RecordWhatsAppSent() { s.whatsappSent.Inc() }

// RecordWhatsAppFailure counts a failed confirmation attempt.
func (s *MetricsService) RecordWhatsAppFailure() { s.whatsappFailures.Inc() }
