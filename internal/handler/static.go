package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves the public catalog and admin pages from an fs.FS.
// A directory request is answered with its index.html.
type StaticHandler struct {
	files     fs.FS
	indexFile string
}

func NewStaticHandler(files fs.FS) *StaticHandler {
	return &StaticHandler{
		files:     files,
		indexFile: "index.html",
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r)
		return
	}

	// Get the wildcard path from Chi router context
	p := chi.URLParam(r, "*")
	if p == "" {
		p = strings.TrimPrefix(r.URL.Path, "/")
	}
	if strings.HasPrefix(p, "api/") {
		notFound(w, r)
		return
	}

	name := path.Clean("/" + p)[1:]
	if name == "" {
		name = "."
	}

	info, err := fs.Stat(h.files, name)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		name = path.Join(name, h.indexFile)
		if _, err := fs.Stat(h.files, name); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	http.ServeFileFS(w, r, h.files, name)
}
