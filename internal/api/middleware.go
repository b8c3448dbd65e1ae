package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/tenant"
)

type contextKey string

const tenantKey contextKey = "tenant"

// requestLogger emits one structured line per request, tied to the chi
// request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// requireTenant authenticates the bearer token and loads the tenant into the
// request context. Handlers behind it can assume tenantFrom never fails.
func (s *Server) requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
			return
		}

		tenantID, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}

		t, err := s.tenants.GetByID(r.Context(), tenantID)
		if err != nil {
			// A valid token for a vanished tenant still means unauthenticated.
			writeError(w, http.StatusUnauthorized, "invalid_token", "tenant no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantFrom(r *http.Request) *tenant.Tenant {
	return r.Context().Value(tenantKey).(*tenant.Tenant)
}
