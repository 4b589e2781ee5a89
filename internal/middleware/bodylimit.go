package middleware

import (
	"net/http"

	"github.com/brightwash/catalog-server/internal/config"
	apperrors "github.com/brightwash/catalog-server/internal/errors"
)

type BodyLimitMiddleware struct {
	maxSize int64
}

func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = config.MaxRequestBodySize
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

// Handler rejects declared oversize bodies up front and caps the rest; a
// reader that crosses the cap gets *http.MaxBytesError.
func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.ContentLength > m.maxSize {
			writeError(w, apperrors.PayloadTooLarge())
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		}
		next.ServeHTTP(w, r)
	})
}
