package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeJSON reads a JSON object body into dst. An empty body leaves dst
// untouched so field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.PayloadTooLarge()
	}
	return apperrors.ValidationError("Invalid JSON body")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeError(w, apperrors.MethodNotAllowed())
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperrors.NotFound("Route"))
}

// newRouter returns a sub-router that answers unsupported methods with a JSON
// 405 and plain OPTIONS requests with an empty 200.
func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)
	return r
}
