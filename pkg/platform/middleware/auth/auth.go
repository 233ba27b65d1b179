// Package auth holds the bearer-token middleware for administrative routes.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/httputil"
)

// TokenValidator validates a bearer token and returns the role it grants.
type TokenValidator interface {
	Validate(tokenString string) (subject, role string, err error)
}

type contextKeySubject struct{}

// ContextKeySubject is exported for use in handlers.
var ContextKeySubject = contextKeySubject{}

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeySubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireRole rejects requests whose bearer token is missing, invalid, or
// grants a different role.
func RequireRole(validator TokenValidator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token", "path", r.URL.Path)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			subject, granted, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token", "path", r.URL.Path, "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			if granted != role {
				logger.WarnContext(ctx, "forbidden access - insufficient role",
					"path", r.URL.Path, "subject", subject, "role", granted)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "insufficient privileges"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeySubject, subject)))
		})
	}
}
