package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/v-shakthi/aigateway/internal/auth"
)

type contextKey string

const (
	tenantIDContextKey contextKey = "tenant_id"
	adminSubjectKey    contextKey = "admin_subject"
)

// TenantAuth authenticates every request against authenticator using the
// value of headerName, rejecting with 401/403 per the credential error it
// returns, and stores the resolved tenant ID on the request context.
func TenantAuth(authenticator *auth.TenantAuthenticator, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := authenticator.Authenticate(r.Header.Get(headerName))
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, auth.ErrInvalidCredential) {
					status = http.StatusForbidden
				}
				writeAuthError(w, status, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDContextKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantID returns the tenant ID resolved by TenantAuth for this request, or
// "" if the middleware hasn't run.
func TenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantIDContextKey).(string)
	return tenantID
}

// AdminAuth authenticates the gatewayctl admin surface with a bearer JWT
// issued by issuer, separate from tenant API-key auth on the completion path.
func AdminAuth(issuer *auth.AdminTokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer admin token")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			subject, err := issuer.Verify(tokenString)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "invalid admin token: "+err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), adminSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSubject returns the subject the admin bearer token was issued for.
func AdminSubject(ctx context.Context) string {
	subject, _ := ctx.Value(adminSubjectKey).(string)
	return subject
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    "authentication_error",
		},
	})
}
