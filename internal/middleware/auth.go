package middleware

import (
	"context"
	"net/http"

	"github.com/brightwash/catalog-server/internal/audit"
	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/token"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// GetClaims returns the verified token claims stored by AuthMiddleware.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := token.ExtractBearer(r.Header.Get("Authorization"))
		if !ok {
			m.reject(w, r, "missing_token")
			return
		}

		claims, err := m.verifier.Verify(raw)
		if err != nil {
			m.reject(w, r, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	audit.LogFromRequest(r, audit.Event{
		Type: audit.EventAuthFailure,
		Details: map[string]interface{}{
			"reason": reason,
			"method": r.Method,
			"path":   r.URL.Path,
		},
	})
	writeError(w, apperrors.Unauthorized("Unauthorized"))
}
