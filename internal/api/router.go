package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(chatHandler *ChatHandler, siteHandler *SiteHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(CORSMiddleware)          // Widget runs cross-origin; also answers preflight

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/admin/login", siteHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Widget-facing routes, gated on the publishable key
		r.Group(func(r chi.Router) {
			r.Use(PublishableKeyMiddleware)

			r.Post("/chat", chatHandler.StreamChat)
			r.Post("/log-chat", chatHandler.LogChat)

			r.Get("/houses", siteHandler.ListHousesHandler)
			r.Get("/houses/{slug}", siteHandler.GetHouseHandler)
			r.Post("/leads", siteHandler.CreateLeadHandler)
			r.Get("/settings/{key}", siteHandler.GetSettingHandler)
		})

		// Admin back-office routes
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware)

			r.Get("/admin/houses", siteHandler.AdminListHousesHandler)
			r.Post("/admin/houses", siteHandler.AdminCreateHouseHandler)
			r.Put("/admin/houses/{houseID}", siteHandler.AdminUpdateHouseHandler)
			r.Delete("/admin/houses/{houseID}", siteHandler.AdminDeleteHouseHandler)

			r.Get("/admin/leads", siteHandler.AdminListLeadsHandler)
			r.Get("/admin/leads/export", siteHandler.AdminExportLeadsHandler)
			r.Patch("/admin/leads/{leadID}", siteHandler.AdminUpdateLeadStatusHandler)

			r.Put("/admin/settings/{key}", siteHandler.PutSettingHandler)
		})
	})

	return r
}
