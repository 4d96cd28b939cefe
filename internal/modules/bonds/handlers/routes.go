package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers bond catalog, market data and sync routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bonds", func(r chi.Router) {
		r.Get("/", h.HandleListBonds)
		r.Get("/facets", h.HandleGetFacets)
		r.Get("/{bondId}", h.HandleGetBond)
		r.Get("/{bondId}/quote", h.HandleGetQuote)
		r.Get("/{bondId}/prices", h.HandleGetPrices)
		r.Get("/{bondId}/order-book", h.HandleGetOrderBook)
	})

	r.Post("/sync-bonds", h.HandleSyncBonds)
	r.Get("/sync-bonds/status", h.HandleSyncStatus)
}
