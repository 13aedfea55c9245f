// Package router wires every HTTP surface of the service onto one chi mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookmydoc/bookmydoc-server/internal/applications"
	"github.com/bookmydoc/bookmydoc-server/internal/appointments"
	"github.com/bookmydoc/bookmydoc-server/internal/chat"
	"github.com/bookmydoc/bookmydoc-server/internal/doctors"
	httpmiddleware "github.com/bookmydoc/bookmydoc-server/internal/http/middleware"
	"github.com/bookmydoc/bookmydoc-server/internal/payments"
	"github.com/bookmydoc/bookmydoc-server/internal/users"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	UsersHandler        *users.Handler
	IdentityWebhook     *users.WebhookHandler
	DoctorsHandler      *doctors.Handler
	ApplicationsHandler *applications.Handler
	AppointmentsHandler *appointments.Handler
	PaymentsHandler     *payments.Handler
	ChatHandler         *chat.Handler
	MetricsHandler      http.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.IdentityWebhook != nil {
		r.Post("/webhooks/identity", cfg.IdentityWebhook.Handle)
	}
	if cfg.UsersHandler != nil {
		r.Post("/users/sync", cfg.UsersHandler.SyncUser)
		r.Get("/users/{userID}", cfg.UsersHandler.GetUser)
	}

	if cfg.DoctorsHandler != nil {
		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", cfg.DoctorsHandler.ListDoctors)
			r.Get("/{doctorID}", cfg.DoctorsHandler.GetDoctor)
			r.Put("/{doctorID}/availability", cfg.DoctorsHandler.UpdateAvailability)
			if cfg.AppointmentsHandler != nil {
				r.Get("/{doctorID}/appointments", cfg.AppointmentsHandler.ListByDoctor)
			}
		})
	}

	if cfg.ApplicationsHandler != nil {
		r.Post("/applications", cfg.ApplicationsHandler.Submit)
	}

	if cfg.PaymentsHandler != nil {
		r.Post("/payments/intent", cfg.PaymentsHandler.CreateIntent)
	}

	if cfg.AppointmentsHandler != nil {
		r.Post("/confirm-payment", cfg.AppointmentsHandler.ConfirmPayment)
		r.Route("/appointments/{appointmentID}", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.Get)
			r.Post("/cancel", cfg.AppointmentsHandler.Cancel)
			r.Get("/join", cfg.AppointmentsHandler.Join)
		})
		r.Get("/patients/{patientID}/appointments", cfg.AppointmentsHandler.ListByPatient)
	}

	if cfg.ChatHandler != nil {
		r.Post("/chat", cfg.ChatHandler.Ask)
	}

	// Admin review surface, JWT-protected.
	if cfg.ApplicationsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/applications", cfg.ApplicationsHandler.List)
			admin.Post("/applications/{applicationID}/approve", cfg.ApplicationsHandler.Approve)
			admin.Post("/applications/{applicationID}/reject", cfg.ApplicationsHandler.Reject)
		})
	}

	return r
}
