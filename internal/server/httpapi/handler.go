// Package httpapi exposes the track service over HTTP: a chi router with
// JSON request/response handling, bearer-token authentication, and an
// email allow-list guard on the administrative routes.
package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/accesscodes"
	"github.com/dmitrijs2005/trackpass/internal/server/auth"
	"github.com/dmitrijs2005/trackpass/internal/server/config"
	"github.com/dmitrijs2005/trackpass/internal/server/entitlements"
	"github.com/dmitrijs2005/trackpass/internal/server/payments"
	"github.com/dmitrijs2005/trackpass/internal/server/progress"
	"github.com/dmitrijs2005/trackpass/internal/server/users"
)

type Handler struct {
	users           *users.Service
	entitlements    *entitlements.Service
	progress        *progress.Service
	codes           *accesscodes.Service
	payments        *payments.Service
	admins          *auth.AdminPolicy
	jwtSecret       []byte
	devGrantEnabled bool
	logger          logging.Logger
}

func NewHandler(
	userSvc *users.Service,
	entitlementSvc *entitlements.Service,
	progressSvc *progress.Service,
	codeSvc *accesscodes.Service,
	paymentSvc *payments.Service,
	admins *auth.AdminPolicy,
	cfg *config.Config,
	logger logging.Logger,
) *Handler {
	return &Handler{
		users:           userSvc,
		entitlements:    entitlementSvc,
		progress:        progressSvc,
		codes:           codeSvc,
		payments:        paymentSvc,
		admins:          admins,
		jwtSecret:       []byte(cfg.SecretKey),
		devGrantEnabled: cfg.DevGrantEnabled,
		logger:          logger.With("module", "httpapi"),
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// public
		r.Post("/auth/signup", h.handleSignUp)
		r.Post("/auth/login", h.handleLogIn)
		r.Get("/tracks", h.handleTrackCatalog)
		r.Post("/webhooks/payments", h.handlePaymentWebhook)

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Get("/me", h.handleMe)
			r.Post("/me/onboarding", h.handleCompleteOnboarding)
			r.Get("/me/preferences", h.handleGetPreferences)
			r.Put("/me/preferences", h.handleUpdatePreferences)

			r.Get("/entitlements", h.handleListEntitlements)
			r.Post("/tracks/{track}/start", h.handleStartTrack)
			r.Post("/tracks/{track}/days/{day}/complete", h.handleCompleteDay)
			r.Get("/tracks/{track}/journal", h.handleListJournal)
			r.Put("/tracks/{track}/journal/{day}", h.handleSaveJournal)

			r.Post("/purchases/intent", h.handleCreateIntent)
			r.Post("/purchases/checkout", h.handleCreateCheckout)
			r.Post("/purchases/confirm-intent", h.handleConfirmIntent)
			r.Post("/purchases/confirm-session", h.handleConfirmSession)

			r.Post("/codes/redeem", h.handleRedeemCode)
			r.Post("/dev/grant", h.handleDevGrant)
		})

		// administrative
		r.Group(func(r chi.Router) {
			r.Use(h.requireUser, h.requireAdmin)

			r.Post("/admin/grants", h.handleAdminGrant)
			r.Post("/admin/codes", h.handleAdminCreateCode)
			r.Get("/admin/codes", h.handleAdminListCodes)
			r.Post("/admin/codes/{code}/deactivate", h.handleAdminDeactivateCode)
			r.Get("/admin/admins", h.handleAdminListAdmins)
			r.Post("/admin/admins", h.handleAdminAddAdmin)
		})
	})

	return r
}
