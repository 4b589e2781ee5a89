package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS answers preflight requests with an empty 200 and adds
// cross-origin headers to every other response.
func NewCORS(allowedOrigins []string) *cors.Cors {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusOK,
	})
}
