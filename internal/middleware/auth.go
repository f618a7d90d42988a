package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier resolves a bearer token to the caller it was issued to.
type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticate requires a valid bearer token. A missing token is 401, a
// bad or expired one is 403.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "access token required")
				return
			}
			p, err := v.Verify(token)
			if err != nil {
				logger.Debug("Token rejected", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, errors.ErrCodeForbidden, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func requireRole(allowed func(models.Principal) bool, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "access token required")
				return
			}
			if !allowed(p) {
				writeError(w, http.StatusForbidden, errors.ErrCodeForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(models.Principal.IsAdmin, "admin access required")(next)
}

// RequireFleetCommand lets admirals and admins through.
func RequireFleetCommand(next http.Handler) http.Handler {
	return requireRole(models.Principal.CanCommandFleets, "admiral or admin access required")(next)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
