package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/staylane/bookings/internal/http/middleware"
	"github.com/staylane/bookings/internal/service"
	"github.com/staylane/bookings/pkg/config"
	mw "github.com/staylane/bookings/pkg/middleware"
)

type Handlers struct {
	auth     service.AuthService
	listings service.ListingService
	bookings service.BookingService
	payouts  service.PayoutService
	cfg      *config.Config
}

func New(
	auth service.AuthService,
	listings service.ListingService,
	bookings service.BookingService,
	payouts service.PayoutService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		auth:     auth,
		listings: listings,
		bookings: bookings,
		payouts:  payouts,
		cfg:      cfg,
	}
}

// Router wires the full route table. Routes are enumerated here and
// nowhere else.
func (h *Handlers) Router(limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireJWT := middleware.RequireJWT(h.cfg.Auth.JWTSecret)
	limited := func(r chi.Router) chi.Router {
		if limiter != nil {
			return r.With(limiter.Middleware())
		}
		return r
	}

	r.Route("/api", func(r chi.Router) {
		limited(r).Post("/register", h.register)
		limited(r).Post("/login", h.login)

		r.Get("/search", h.search)
		r.Get("/listings", h.listListings)
		r.Get("/listings/{id}", h.getListing)
		r.Get("/listings/{id}/image", h.getListingImage)

		r.Group(func(r chi.Router) {
			r.Use(requireJWT)

			r.Post("/listings", h.createListing)
			r.Put("/listings/{id}", h.updateListing)
			r.Delete("/listings/{id}", h.deleteListing)
			r.Post("/listings/{id}/image", h.uploadListingImage)
			r.Get("/seller/listings", h.sellerListings)

			limited(r).Post("/booking/session", h.createBookingSession)
			r.Post("/booking/confirm", h.confirmBooking)
			r.Get("/bookings", h.listOrders)
			r.Get("/bookings/{listingID}/booked", h.alreadyBooked)

			r.Post("/payouts/account", h.payoutAccount)
			r.Get("/payouts/status", h.payoutStatus)
			r.Get("/payouts/balance", h.payoutBalance)
			r.Post("/payouts/settings-link", h.payoutSettingsLink)
		})
	})

	return r
}

// parseTime accepts RFC3339 or bare dates for search bounds.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
