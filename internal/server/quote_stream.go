package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
)

const (
	msgSubscribeQuotes = "subscribe_quotes"
	msgQuoteUpdate     = "quote_update"
	msgError           = "error"

	quoteFetchConcurrency = 4
	quoteFetchTimeout     = 10 * time.Second
	writeWait             = 10 * time.Second
)

// QuoteSource fetches a single upstream quote
type QuoteSource interface {
	GetQuote(ctx context.Context, instrumentID string, quantity *int64) (*domain.Quote, error)
}

// streamRequest is a client message on /ws
type streamRequest struct {
	Type    string   `json:"type"`
	BondIDs []string `json:"bond_ids"`
}

// streamMessage is a server message on /ws
type streamMessage struct {
	Type   string        `json:"type"`
	BondID string        `json:"bond_id,omitempty"`
	Quote  *domain.Quote `json:"quote,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// QuoteStreamHandler serves quote subscriptions over a websocket
type QuoteStreamHandler struct {
	catalog *catalog.Catalog
	quotes  QuoteSource
	log     zerolog.Logger
}

// NewQuoteStreamHandler creates a new quote stream handler
func NewQuoteStreamHandler(cat *catalog.Catalog, quotes QuoteSource, log zerolog.Logger) *QuoteStreamHandler {
	return &QuoteStreamHandler{
		catalog: cat,
		quotes:  quotes,
		log:     log.With().Str("component", "quote_stream").Logger(),
	}
}

// ServeHTTP handles GET /ws
func (h *QuoteStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The server-wide read/write timeouts would otherwise close the upgraded connection
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	h.log.Info().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.log.Info().Msg("WebSocket client disconnected")
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if ctx.Err() == nil {
				h.log.Debug().Err(err).Msg("WebSocket read ended")
			}
			return
		}

		var req streamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := h.write(ctx, conn, streamMessage{Type: msgError, Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		switch req.Type {
		case msgSubscribeQuotes:
			if err := h.sendQuotes(ctx, conn, req.BondIDs); err != nil {
				return
			}
		default:
			if err := h.write(ctx, conn, streamMessage{Type: msgError, Error: "unsupported message type"}); err != nil {
				return
			}
		}
	}
}

// sendQuotes fetches quotes for the catalog bonds among ids and writes one
// quote_update per successful fetch, in request order. Unknown ids and failed
// fetches are skipped.
func (h *QuoteStreamHandler) sendQuotes(ctx context.Context, conn *websocket.Conn, ids []string) error {
	h.log.Debug().Strs("bond_ids", ids).Msg("Subscribing to quotes")

	bonds := make([]*domain.Bond, len(ids))
	quotes := make([]*domain.Quote, len(ids))
	for i, id := range ids {
		if bond, ok := h.catalog.GetBond(id); ok {
			bonds[i] = bond
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteFetchConcurrency)
	for i, bond := range bonds {
		if bond == nil {
			continue
		}
		i, bond := i, bond
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, quoteFetchTimeout)
			defer cancel()

			quote, err := h.quotes.GetQuote(fetchCtx, instrumentIDFor(bond), nil)
			if err != nil {
				h.log.Warn().Err(err).Str("bond_id", bond.ID).Msg("Quote fetch failed")
				return nil
			}
			quotes[i] = quote
			return nil
		})
	}
	_ = g.Wait()

	for i, quote := range quotes {
		if quote == nil {
			continue
		}
		msg := streamMessage{Type: msgQuoteUpdate, BondID: bonds[i].ID, Quote: quote}
		if err := h.write(ctx, conn, msg); err != nil {
			return err
		}
	}
	return nil
}

func (h *QuoteStreamHandler) write(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		h.log.Debug().Err(err).Str("type", msg.Type).Msg("WebSocket write failed")
		return err
	}
	return nil
}

// instrumentIDFor prefers the ISIN, which is what the upstream keys quotes by
func instrumentIDFor(bond *domain.Bond) string {
	if bond.ISIN != "" {
		return bond.ISIN
	}
	return bond.ID
}
