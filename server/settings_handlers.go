package server

import (
	"net/http"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/settings"
	"github.com/rs/zerolog"
)

// SettingsMiddleware negotiates the request locale and provides that locale's settings store
// to downstream handlers. A failed fetch is logged; the store is provided regardless.
func (s *Server) SettingsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := s.settings.LocaleFromRequest(r)
		store, err := s.settings.Store(r.Context(), locale)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("locale", locale).Msg("general settings unavailable")
		}
		w.Header().Set("Content-Language", locale)
		w.Header().Add("Vary", "Accept-Language, Cookie")
		next(w, r.WithContext(settings.NewContext(r.Context(), store)))
	}
}

// SettingsHandler returns the general settings of the negotiated locale.
//
//	GET /api/settings[?locale=ar]
//	200 {"locale":"en","settings":{...}}
//	503 {"message":"Settings unavailable"}
func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := settings.MustFromContext(r.Context())
		general := store.Settings()
		if general == nil {
			writeJSON(w, http.StatusServiceUnavailable, api.MessageResponse{Message: api.MessageSettingsUnavailable})
			return
		}
		writeJSON(w, http.StatusOK, api.SettingsResponse{Locale: store.Locale(), Settings: general})
	}
}
