package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/rs/zerolog/log"
)

// writeJSON writes v with the given status. API responses are never cached.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("failed to encode response")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, api.MessageResponse{Message: api.MessageMethodNotAllowed})
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, api.MessageResponse{Message: api.MessageNotFound})
	}
}
