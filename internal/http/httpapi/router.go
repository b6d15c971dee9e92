package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/http/handlers"
	"crowdfund/internal/infra"
	"crowdfund/internal/middleware"
)

// NewRouter builds the HTTP surface: public reads, authenticated writes.
func NewRouter(app *handlers.App, cfg *infra.Config, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	r.Use(middleware.Country(lookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Get("/{id}", app.CampaignsGet)
		r.Get("/{id}/donations", app.DonationsList)
		r.Get("/{id}/donations/stats", app.DonationsStats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthSecret))
			r.Post("/", app.CampaignsCreate)
			r.Post("/{id}/pause", app.CampaignsPause)
			r.Post("/{id}/donations", app.DonationsCreate)
			r.Post("/{id}/withdraw", app.CampaignsWithdraw)
			r.Post("/{id}/refund", app.CampaignsRefund)
		})
	})

	r.Route("/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.AuthSecret))
		r.Get("/campaigns", app.MeCampaigns)
		r.Get("/donations", app.MeDonations)
	})

	return r
}
