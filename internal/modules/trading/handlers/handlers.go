// Package handlers provides HTTP handlers for order submission and tracking.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/trading"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderService is the subset of trading.OrderService the handlers need
type OrderService interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error)
	ListOrders(status domain.OrderStatus) []domain.Order
	GetOrder(id string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
}

var _ OrderService = (*trading.OrderService)(nil)

// Handler handles order HTTP requests
type Handler struct {
	service OrderService
	log     zerolog.Logger
}

// NewHandler creates a new trading handler
func NewHandler(service OrderService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trading").Logger(),
	}
}

// HandleSubmitOrder handles POST /api/orders
func (h *Handler) HandleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.SubmitOrder(r.Context(), req)
	if err != nil {
		h.log.Warn().Err(err).Str("instrument_id", req.InstrumentID).Msg("Order submission failed")
		h.writeError(w, submitStatus(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetOrders handles GET /api/orders?status=
func (h *Handler) HandleGetOrders(w http.ResponseWriter, r *http.Request) {
	var status domain.OrderStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status = domain.OrderStatus(strings.ToLower(raw))
		if !status.Valid() {
			h.writeError(w, http.StatusBadRequest, "Invalid status filter: "+raw)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, h.service.ListOrders(status))
}

// HandleGetOrder handles GET /api/orders/{orderId}
func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.service.GetOrder(orderID)
	if err != nil {
		h.writeError(w, statusFor(err), "Order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// HandleCancelOrder handles POST /api/orders/{orderId}/cancel
func (h *Handler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.service.CancelOrder(r.Context(), orderID)
	if err != nil {
		h.log.Warn().Err(err).Str("order_id", orderID).Msg("Order cancellation failed")
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// submitStatus reports executor faults as bad requests; the client may retry
// with a different order.
func submitStatus(err error) int {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return http.StatusBadRequest
	}
	return statusFor(err)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
