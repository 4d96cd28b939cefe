package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers order routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.HandleGetOrders)
		r.Post("/", h.HandleSubmitOrder)
		r.Get("/{orderId}", h.HandleGetOrder)
		r.Post("/{orderId}/cancel", h.HandleCancelOrder)
	})
}
