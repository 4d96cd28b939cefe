package moment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestClient_ImplementsDomainInterfaces(t *testing.T) {
	var _ domain.MarketDataClient = (*Client)(nil)
	var _ domain.BrokerClient = (*Client)(nil)
}

func TestClient_ListInstruments(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected int
		wantErr  bool
	}{
		{name: "bare array", status: 200, body: `[{"isin":"A"},{"isin":"B"}]`, expected: 2},
		{name: "data envelope", status: 200, body: `{"data":[{"isin":"A"}]}`, expected: 1},
		{name: "unexpected shape", status: 200, body: `{"detail":"nothing here"}`, expected: 0},
		{name: "server error", status: 500, body: `{"error":"down"}`, wantErr: true},
		{name: "unauthorized", status: 401, body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			records, err := client.ListInstruments(context.Background(), "outstanding", 100)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
				assert.Empty(t, records)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.expected)
		})
	}
}

func TestClient_GetInstrument_UnwrapsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/data/instrument/US1/", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"isin":"US1","issuer":"Acme"}}`))
	})

	record, err := client.GetInstrument(context.Background(), "US1")

	require.NoError(t, err)
	assert.Equal(t, "Acme", record["issuer"])
}

func TestClient_GetQuote_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"instrument not found"}`))
	})

	quote, err := client.GetQuote(context.Background(), "missing", nil)

	assert.Nil(t, quote)
	require.Error(t, err)
	assert.Equal(t, "Moment API Error (404): instrument not found", err.Error())
}

func TestClient_GetHistoricalPrices_DefaultFrequency(t *testing.T) {
	var frequency, start string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		frequency = r.URL.Query().Get("frequency")
		start = r.URL.Query().Get("start")
		_, _ = w.Write([]byte(`{"count":0,"data":[]}`))
	})

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	prices, err := client.GetHistoricalPrices(context.Background(), "US1", from, from.AddDate(0, 1, 0), "")

	require.NoError(t, err)
	assert.Equal(t, "1day", frequency)
	assert.Equal(t, "2024-01-02", start)
	assert.Empty(t, prices.Data)
}

func TestClient_SubmitOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		_, _ = w.Write([]byte(`{"order_id":"up-7","status":"pending"}`))
	})

	resp, err := client.SubmitOrder(context.Background(), domain.OrderRequest{
		InstrumentID: "US1",
		Side:         domain.OrderSideSell,
		Quantity:     5,
		OrderType:    domain.OrderTypeMarket,
	})

	require.NoError(t, err)
	assert.Equal(t, "up-7", resp.OrderID)
	assert.Equal(t, domain.OrderStatusPending, resp.Status)
	assert.Equal(t, domain.OrderSideSell, resp.Side)
	assert.Equal(t, int64(5), resp.Quantity)
}

func TestClient_CancelOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/trading/orders/up-7/cancel/", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"cancelled"}`))
	})

	resp, err := client.CancelOrder(context.Background(), "up-7")

	require.NoError(t, err)
	assert.Equal(t, "up-7", resp.OrderID)
	assert.Equal(t, domain.OrderStatusCancelled, resp.Status)
}
