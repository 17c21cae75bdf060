package handler

import (
	"net/http"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"go.uber.org/zap"
)

// AuthMiddleware validates the Supabase bearer token and puts the caller in
// the request context.
func AuthMiddleware(access *service.AccessService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal, err := access.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			observability.RecordPrincipal(r, principal)
			next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireGestor rejects callers without the manager role.
func RequireGestor(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := domain.PrincipalFrom(r.Context())
			if p == nil || !p.IsGestor() {
				logger.Warn("auth: gestor role required",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
