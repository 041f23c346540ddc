package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dkravchenko/polyclinic-backend/api/responses"
	pkgAuth "github.com/dkravchenko/polyclinic-backend/pkg/auth"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

// Auth validates a bearer token and seeds the request context with the
// resolved identity. Any rejection maps to a 401.
func Auth(cfg config.JWTConfig, authMetrics *metrics.AuthMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, err := pkgAuth.Authenticate(cfg, token)
			if err != nil {
				if kind := pkgAuth.RejectionKindOf(err); kind != "" {
					authMetrics.IncTokenRejection(string(kind))
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), ident.UserID)
			ctx = WithRole(ctx, ident.Role)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    strconv.Itoa(ident.UserID),
					"actor_role": string(ident.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
