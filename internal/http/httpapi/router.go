package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"engrafo/internal/http/handlers"
	"engrafo/internal/middleware"
)

// NewRouter wires the public marketplace surface, the admin area and
// the static file mount onto one chi router. lookup may be nil when no
// GeoIP database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.I18N("el", lookup),
		middleware.Logger(app.Logger),
	)

	writeLimit := middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/readyz", app.Ready)

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(writeLimit).Post("/login", app.AuthLogin)
	})

	r.Route("/v1/documents", func(r chi.Router) {
		r.Get("/", app.DocumentsList)
		r.Get("/{id}", app.DocumentsGet)
		r.Post("/{id}/views", app.DocumentsIncrementViews)
		r.With(middleware.AuthJWT(app.Cfg.JWTSecret), middleware.RequireAdmin).
			Get("/{id}/file", app.AdminDocumentFile)
	})

	r.Route("/v1/donations", func(r chi.Router) {
		r.With(writeLimit).Post("/", app.DonationsCreate)
		r.With(writeLimit).Post("/verify", app.DonationsVerify)
		// The IPN listener is exempt from rate limiting: the caller is
		// the payment processor, not a browser.
		r.Post("/ipn", app.DonationsIPN)
		r.Post("/resolve", app.DonationsResolve)
	})

	r.Route("/v1/support/tickets", func(r chi.Router) {
		r.With(writeLimit).Post("/", app.TicketsCreate)
		r.Get("/{code}", app.TicketsGet)
		r.With(writeLimit).Post("/{code}/messages", app.TicketsAppendMessage)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret), middleware.RequireAdmin)

		r.Get("/stats", app.AdminStats)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", app.AdminDocumentCreate)
			r.Put("/{id}", app.AdminDocumentUpdate)
			r.Delete("/{id}", app.AdminDocumentDelete)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", app.AdminDonationsList)
			r.Delete("/{id}", app.AdminDonationDelete)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", app.AdminTicketsList)
			r.Post("/{code}/replies", app.AdminTicketReply)
			r.Post("/{code}/close", app.AdminTicketClose)
		})
	})

	if app.Store != nil {
		fs := http.StripPrefix("/files/", http.FileServer(http.Dir(app.Store.BasePath())))
		r.Get("/files/*", fs.ServeHTTP)
	}

	return r
}
