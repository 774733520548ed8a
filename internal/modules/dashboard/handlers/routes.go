package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the request/response dashboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.HandleGetCatalog)

	r.Get("/dashboard", h.HandleGetDashboard)
	r.Get("/dashboard/state", h.HandleGetState)
	r.Put("/dashboard/selection", h.HandleSelect)
	r.Post("/dashboard/refresh", h.HandleRefresh)
	r.Get("/dashboard/export.xlsx", h.HandleExport)
}

// RegisterStreamRoutes registers long-lived routes. Mount them outside
// request timeouts and response compression.
func (h *Handler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/dashboard/ws", h.HandleStream)
}
