package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careport/booking-gateway/internal/availability"
	"github.com/careport/booking-gateway/internal/booking"
	"github.com/careport/booking-gateway/internal/http/handlers"
	httpmiddleware "github.com/careport/booking-gateway/internal/http/middleware"
	"github.com/careport/booking-gateway/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	BookingHandler      *booking.Handler
	AvailabilityHandler *availability.Handler
	AdminAppointments   *handlers.AdminAppointmentsHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
	AdminJWTSecret      string

	// Requests/sec and burst applied to the payment endpoints.
	PaymentRateLimit float64
	PaymentBurst     int
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AvailabilityHandler != nil {
			api.Mount("/availability", cfg.AvailabilityHandler.Routes())
		}
		if cfg.BookingHandler != nil {
			rate, burst := cfg.PaymentRateLimit, cfg.PaymentBurst
			if rate <= 0 {
				rate = 2
			}
			if burst <= 0 {
				burst = 5
			}
			api.With(httpmiddleware.RateLimit(rate, burst)).Mount("/booking", cfg.BookingHandler.Routes())
		}
		if cfg.AdminAppointments != nil {
			api.Route("/admin", func(admin chi.Router) {
				admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
				admin.Mount("/", cfg.AdminAppointments.Routes())
			})
		}
	})

	return r
}
