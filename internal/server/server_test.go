package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadkat/bondtrading/internal/config"
	"github.com/anadkat/bondtrading/internal/di"
)

// fakeUpstream serves a small Moment API: two instruments and a quote for US0001
func fakeUpstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/data/instrument/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"isin": "US0001", "issuer": "Acme Corp", "coupon": 4.5, "sector": "Industrials", "sp_rating": "AA"},
			{"isin": "US0002", "issuer": "Globex", "coupon": 5.25, "sector": "Energy", "sp_rating": "BBB"}
		]}`))
	})
	mux.HandleFunc("/v1/trading/quote/US0001/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp": "2024-05-01T12:00:00Z", "bid_price": 99.5, "ask_price": 100.25}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "not available"}`, http.StatusServiceUnavailable)
	})
	return mux
}

func newTestServer(t *testing.T, upstream http.Handler) (*Server, *di.Container) {
	t.Helper()

	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		Port:              8000,
		DevMode:           true,
		MomentBaseURL:     api.URL,
		MomentAPIKey:      "test-key",
		MomentHTTPTimeout: 5 * time.Second,
		InstrumentStatus:  "outstanding",
		InstrumentLimit:   100,
		ExecutionMode:     config.ExecutionModeSimulated,
		SimulatedDelayMin: 0,
		SimulatedDelayMax: time.Millisecond,
		DefaultUserID:     "demo_user",
	}
	log := zerolog.New(nil).Level(zerolog.Disabled)

	container, err := di.Wire(cfg, log)
	require.NoError(t, err)

	return New(Config{Log: log, Port: cfg.Port, DevMode: true, Container: container}), container
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth_EmptyCatalog(t *testing.T) {
	s, _ := newTestServer(t, fakeUpstream())

	w := doRequest(t, s, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy", "bonds_loaded": 0}`, w.Body.String())
}

func TestHealth_CountsLoadedBonds(t *testing.T) {
	s, container := newTestServer(t, fakeUpstream())
	container.SyncService.Refresh(context.Background())

	w := doRequest(t, s, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy", "bonds_loaded": 2}`, w.Body.String())
}

func TestHealth_UpstreamDown(t *testing.T) {
	s, container := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	container.SyncService.Refresh(context.Background())

	w := doRequest(t, s, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy", "bonds_loaded": 0}`, w.Body.String())
}

func TestRoutes_Registered(t *testing.T) {
	s, _ := newTestServer(t, fakeUpstream())

	registered := map[string]bool{}
	err := chi.Walk(s.router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, route := range []string{
		"GET /api/health",
		"GET /api/system/status",
		"GET /api/bonds/",
		"GET /api/bonds/{bondId}",
		"POST /api/sync-bonds",
		"GET /api/orders/",
		"POST /api/orders/",
		"POST /api/orders/{orderId}/cancel",
		"GET /ws",
	} {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	s, _ := newTestServer(t, fakeUpstream())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.test")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEndToEnd_SyncListAndOrder(t *testing.T) {
	s, _ := newTestServer(t, fakeUpstream())

	w := doRequest(t, s, http.MethodPost, "/api/sync-bonds", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"synced_count": 2, "total_bonds": 2}`, w.Body.String())

	// A second sync inserts nothing new
	w = doRequest(t, s, http.MethodPost, "/api/sync-bonds", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"synced_count": 0, "total_bonds": 2}`, w.Body.String())

	w = doRequest(t, s, http.MethodGet, "/api/bonds?sector=Energy", "")
	require.Equal(t, http.StatusOK, w.Code)
	var bonds []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bonds))
	require.Len(t, bonds, 1)
	assert.Equal(t, "US0002", bonds[0]["id"])

	w = doRequest(t, s, http.MethodPost, "/api/orders",
		`{"instrument_id": "US0001", "side": "buy", "quantity": 10, "order_type": "market"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "pending", order["status"])
	orderID, _ := order["order_id"].(string)
	assert.True(t, strings.HasPrefix(orderID, "ord_"))

	w = doRequest(t, s, http.MethodGet, "/api/orders/"+orderID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, s, http.MethodPost, "/api/orders/"+orderID+"/cancel", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, s, http.MethodPost, "/api/orders/"+orderID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTimeouts(t *testing.T) {
	tests := []struct {
		name            string
		upstream        time.Duration
		expectedRequest time.Duration
		expectedWrite   time.Duration
	}{
		{"short upstream keeps the floor", 5 * time.Second, 60 * time.Second, 65 * time.Second},
		{"default upstream", 30 * time.Second, 60 * time.Second, 65 * time.Second},
		{"long upstream stretches both", 90 * time.Second, 95 * time.Second, 100 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, write := timeouts(tt.upstream)

			assert.Equal(t, tt.expectedRequest, request)
			assert.Equal(t, tt.expectedWrite, write)
			assert.Greater(t, request, tt.upstream)
			assert.Greater(t, write, request)
		})
	}
}

func TestNew_WriteTimeoutOutlastsUpstream(t *testing.T) {
	s, container := newTestServer(t, fakeUpstream())

	assert.Greater(t, s.server.WriteTimeout, container.Config.MomentHTTPTimeout)
	assert.Greater(t, s.server.WriteTimeout, s.requestTimeout)
}

func TestSlowUpstream_ErrorReachesClient(t *testing.T) {
	s, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		http.Error(w, `{"detail": "warming up"}`, http.StatusServiceUnavailable)
	}))

	api := httptest.NewUnstartedServer(s.Handler())
	api.Config.ReadTimeout = s.server.ReadTimeout
	api.Config.WriteTimeout = s.server.WriteTimeout
	api.Start()
	t.Cleanup(api.Close)

	resp, err := http.Get(api.URL + "/api/bonds/US0001/quote")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "warming up")
}
