// Package handlers provides HTTP handlers for the bond catalog and market data.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/bonds"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// BondSyncer is the subset of bonds.SyncService the handlers need
type BondSyncer interface {
	SyncNew(ctx context.Context) bonds.SyncResult
	Status() bonds.SyncStatus
	Lookup(ctx context.Context, instrumentID string) (*domain.Bond, error)
}

// Handler handles bond HTTP requests
type Handler struct {
	catalog *catalog.Catalog
	market  domain.MarketDataClient
	syncer  BondSyncer
	log     zerolog.Logger
}

// NewHandler creates a new bonds handler
func NewHandler(cat *catalog.Catalog, market domain.MarketDataClient, syncer BondSyncer, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		market:  market,
		syncer:  syncer,
		log:     log.With().Str("handler", "bonds").Logger(),
	}
}

// HandleListBonds handles GET /api/bonds
func (h *Handler) HandleListBonds(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseBondFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.catalog.SearchBonds(filter))
}

// HandleGetFacets handles GET /api/bonds/facets
func (h *Handler) HandleGetFacets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Facets())
}

// HandleGetBond handles GET /api/bonds/{bondId}.
// Catalog misses fall through to a direct upstream instrument lookup.
func (h *Handler) HandleGetBond(w http.ResponseWriter, r *http.Request) {
	bondID := chi.URLParam(r, "bondId")

	bond, ok := h.catalog.GetBond(bondID)
	if !ok {
		bond, ok = h.catalog.GetBondByISIN(bondID)
	}
	if ok {
		h.writeJSON(w, http.StatusOK, bond)
		return
	}

	bond, err := h.syncer.Lookup(r.Context(), bondID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.writeUpstreamError(w, err, bondID, "instrument")
			return
		}
		h.log.Debug().Err(err).Str("bond_id", bondID).Msg("Instrument lookup failed")
		h.writeError(w, http.StatusNotFound, "Bond not found")
		return
	}

	h.writeJSON(w, http.StatusOK, bond)
}

// HandleGetQuote handles GET /api/bonds/{bondId}/quote?quantity=
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	bondID := chi.URLParam(r, "bondId")

	var quantity *int64
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		q, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || q <= 0 {
			h.writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
		quantity = &q
	}

	quote, err := h.market.GetQuote(r.Context(), bondID, quantity)
	if err != nil {
		h.writeUpstreamError(w, err, bondID, "quote")
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

// HandleGetPrices handles GET /api/bonds/{bondId}/prices?start=&end=&frequency=
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	bondID := chi.URLParam(r, "bondId")
	query := r.URL.Query()

	start, err := parseDate(query.Get("start"), "start")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(query.Get("end"), "end")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start) {
		h.writeError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	frequency := domain.Frequency1Day
	if raw := query.Get("frequency"); raw != "" {
		frequency = domain.PriceFrequency(raw)
		if !frequency.Valid() {
			h.writeError(w, http.StatusBadRequest, "frequency must be one of 1day, 15min, 1min")
			return
		}
	}

	prices, err := h.market.GetHistoricalPrices(r.Context(), bondID, start, end, frequency)
	if err != nil {
		h.writeUpstreamError(w, err, bondID, "prices")
		return
	}

	h.writeJSON(w, http.StatusOK, prices)
}

// HandleGetOrderBook handles GET /api/bonds/{bondId}/order-book
func (h *Handler) HandleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	bondID := chi.URLParam(r, "bondId")

	book, err := h.market.GetOrderBook(r.Context(), bondID)
	if err != nil {
		h.writeUpstreamError(w, err, bondID, "order book")
		return
	}

	h.writeJSON(w, http.StatusOK, book)
}

// HandleSyncBonds handles POST /api/sync-bonds
func (h *Handler) HandleSyncBonds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.syncer.SyncNew(r.Context()))
}

// HandleSyncStatus handles GET /api/sync-bonds/status
func (h *Handler) HandleSyncStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.syncer.Status())
}

// ParseBondFilter maps query parameters onto a catalog filter.
// Empty values and "all" leave a filter unset; unknown parameters are ignored.
func ParseBondFilter(query map[string][]string) (catalog.BondFilter, error) {
	get := func(key string) string {
		if values := query[key]; len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
		return ""
	}
	text := func(key string) *string {
		v := get(key)
		if v == "" || strings.EqualFold(v, "all") {
			return nil
		}
		return &v
	}

	var f catalog.BondFilter
	f.BondType = text("bond_type")
	f.Rating = text("rating")
	f.Sector = text("sector")
	f.Currency = text("currency")

	for _, p := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"min_yield", &f.MinYield},
		{"max_yield", &f.MaxYield},
	} {
		if v := get(p.key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return f, domain.NewValidationError("%s must be a number", p.key)
			}
			*p.dst = &d
		}
	}

	for _, p := range []struct {
		key string
		dst **int
	}{
		{"min_maturity", &f.MinMaturity},
		{"max_maturity", &f.MaxMaturity},
	} {
		if v := get(p.key); v != "" {
			years, err := strconv.Atoi(v)
			if err != nil {
				return f, domain.NewValidationError("%s must be a whole number of years", p.key)
			}
			*p.dst = &years
		}
	}

	return f, nil
}

func parseDate(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, domain.NewValidationError("%s is required (YYYY-MM-DD)", name)
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

// writeUpstreamError reports on-demand upstream failures as 404 with the upstream detail
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error, bondID, what string) {
	h.log.Warn().Err(err).Str("bond_id", bondID).Msgf("Failed to fetch %s", what)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	h.writeError(w, status, err.Error())
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
