package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/well-registry/internal/auth"
	"github.com/couchcryptid/well-registry/internal/domain"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request after it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

// requireAuth resolves the bearer token into an access context and rejects
// the request with 401 when the token is missing or invalid.
func requireAuth(v *auth.Verifier, groups domain.AgencyGroups, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := v.Verify(auth.BearerToken(r))
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized request",
					"path", r.URL.Path,
					"error", err,
					"request_id", chimw.GetReqID(r.Context()),
				)
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}
			ctx := auth.WithAccess(r.Context(), groups.Resolve(p))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessFrom(r *http.Request) domain.AccessContext {
	ac, _ := auth.AccessFrom(r.Context())
	return ac
}
