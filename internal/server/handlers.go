package server

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status      string `json:"status"`
	BondsLoaded int    `json:"bonds_loaded"`
}

// handleHealth handles health check requests. It always answers 200, an empty
// catalog included.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		BondsLoaded: s.container.Catalog.BondCount(),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
