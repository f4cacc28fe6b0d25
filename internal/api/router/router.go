// Package router assembles the HTTP surface: the public booking API used by
// the website widget and the JWT-protected admin console.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angyaliszalon/salon-api/internal/admin"
	"github.com/angyaliszalon/salon-api/internal/booking"
	httpmiddleware "github.com/angyaliszalon/salon-api/internal/http/middleware"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	AdminHandler       *admin.Handler
	AdminJWTSecret     string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// CheckoutRatePerSec limits public checkout submissions per IP.
	// Zero disables the limiter.
	CheckoutRatePerSec float64
	CheckoutBurst      int
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

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public booking API, consumed by the website widget.
	if cfg.BookingHandler != nil {
		r.Route("/api", func(api chi.Router) {
			api.Get("/catalog", cfg.BookingHandler.Catalog)
			api.Route("/booking", func(b chi.Router) {
				b.Post("/quote", cfg.BookingHandler.Quote)
				checkout := b.With()
				if cfg.CheckoutRatePerSec > 0 {
					checkout = b.With(httpmiddleware.RateLimit(cfg.CheckoutRatePerSec, cfg.CheckoutBurst))
				}
				checkout.Post("/checkout", cfg.BookingHandler.Checkout)
			})
		})
	}

	// Admin console. Login is public; everything else requires a token.
	if cfg.AdminHandler != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Post("/login", cfg.AdminHandler.Login)

			ar.Group(func(protected chi.Router) {
				protected.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
				protected.Get("/dashboard", cfg.AdminHandler.Dashboard)
				protected.Get("/customers", cfg.AdminHandler.Customer)
				protected.Get("/pnl", cfg.AdminHandler.PnL)
				protected.Get("/packages/defaults", cfg.AdminHandler.PackageDefaults)
				protected.Post("/packages", cfg.AdminHandler.CreatePackage)
				protected.Post("/notifications/cancel", cfg.AdminHandler.Cancel)
				protected.Post("/notifications/change", cfg.AdminHandler.Change)
			})
		})
	}

	return r
}
