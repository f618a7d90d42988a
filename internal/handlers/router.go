package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/EzraBr1dger/space-map-admin/internal/middleware"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

// NewRouter wires every API route. limiter may be nil.
func NewRouter(h *HandlerManager, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(h.Config.FrontendURL))

	r.Get("/api/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Limit)
		}

		r.Post("/auth/login", h.HandleLogin)
		r.Get("/announcements/public/latest", h.HandleLatestAnnouncements)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.Svc.Auth))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/verify", h.HandleVerify)
				r.Post("/logout", h.HandleLogout)
				r.Post("/change-password", h.HandleChangePassword)
				r.With(middleware.RequireAdmin).Post("/register", h.HandleRegister)
			})

			r.Route("/supplies", func(r chi.Router) {
				r.Get("/", h.HandleGetSupplies)
				r.Get("/stats", h.HandleSupplyStats)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/", h.HandleReplaceSupplies)
					r.Post("/reset", h.HandleResetSupplies)
					r.Put("/{item}", h.HandleSetSupplyItem)
					r.Patch("/{item}/add", h.HandleAddSupplyItem)
					r.Delete("/{item}", h.HandleDeleteSupplyItem)
				})
			})

			r.Route("/planets", func(r chi.Router) {
				r.Get("/", h.HandleListPlanets)
				r.Get("/faction/{faction}", h.HandlePlanetsByFaction)
				r.Get("/{name}", h.HandleGetPlanet)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.HandleCreatePlanet)
					r.Put("/", h.HandleBulkReplacePlanets)
					r.Put("/{name}", h.HandleReplacePlanet)
					r.Delete("/{name}", h.HandleDeletePlanet)
				})
			})

			r.Route("/mapdata", func(r chi.Router) {
				r.Get("/", h.HandleGetMapData)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/planet/{name}", h.HandleUpdateMapPlanet)
					r.Post("/planet/{name}/building", h.HandleStartBuilding)
					r.Delete("/planet/{name}/building", h.HandleCancelBuilding)
					r.Put("/sector/{name}", h.HandleUpdateSector)
					r.Post("/recalculate-sectors", h.HandleRecalculateSectors)
				})
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/dashboard", h.HandleDashboard)
				r.Get("/factions", h.HandleFactionComparison)
				r.Get("/production-cycles", h.HandleProductionCycles)
				r.Get("/health", h.HandleSystemHealth)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/production-cycles/increment", h.HandleIncrementProductionCycles)
					r.Post("/recalculate", h.HandleRecalculateFactionStats)
				})
			})

			r.Route("/fleet", func(r chi.Router) {
				r.Use(middleware.RequireFleetCommand)
				r.Get("/", h.HandleListFleets)
				r.Post("/", h.HandleCreateFleet)
				r.Get("/travel", h.HandleTravelEstimate)
				r.Post("/move", h.HandleMoveFleets)
				r.Post("/settle", h.HandleSettleArrivals)
				r.Get("/{id}", h.HandleGetFleet)
				r.Put("/{id}", h.HandleUpdateFleet)
				r.Delete("/{id}", h.HandleDeleteFleet)
			})

			r.Route("/announcements", func(r chi.Router) {
				r.Get("/", h.HandleListAnnouncements)
				r.Post("/", h.HandleCreateAnnouncement)
				r.Get("/{id}", h.HandleGetAnnouncement)
				r.Put("/{id}", h.HandleUpdateAnnouncement)
				r.Delete("/{id}", h.HandleDeleteAnnouncement)
			})

			r.With(middleware.RequireAdmin).Get("/export/xlsx", h.HandleExportWorkbook)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, errors.ErrCodeNotFound, "route not found")
	})

	return r
}

// HandleHealth is the unauthenticated liveness probe.
func (h *HandlerManager) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": h.now().UTC(),
		"version":   h.Version,
	})
}
