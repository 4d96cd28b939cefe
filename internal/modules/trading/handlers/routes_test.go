package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	expected := map[string]bool{}
	for _, route := range []string{
		"GET /api/orders/",
		"POST /api/orders/",
		"GET /api/orders/{orderId}",
		"POST /api/orders/{orderId}/cancel",
	} {
		expected[route] = false
	}

	err := chi.Walk(router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		key := method + " " + route
		if _, ok := expected[key]; ok {
			expected[key] = true
		}
		return nil
	})

	assert.NoError(t, err)
	for route, found := range expected {
		assert.True(t, found, "route %s should be registered", route)
	}
}
