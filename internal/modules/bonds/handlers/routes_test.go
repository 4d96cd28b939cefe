package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	router, _ := newTestRouter(t, &fakeMarketData{})

	registered := map[string]bool{}
	err := chi.Walk(router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	assert.NoError(t, err)

	for _, route := range []string{
		"GET /api/bonds/",
		"GET /api/bonds/facets",
		"GET /api/bonds/{bondId}",
		"GET /api/bonds/{bondId}/quote",
		"GET /api/bonds/{bondId}/prices",
		"GET /api/bonds/{bondId}/order-book",
		"POST /api/sync-bonds",
		"GET /api/sync-bonds/status",
	} {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}
