package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brightwash/catalog-server/internal/audit"
	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/middleware"
	"github.com/brightwash/catalog-server/internal/service"
)

type PackageHandler struct {
	packageService *service.PackageService
	requireAdmin   func(http.Handler) http.Handler
}

func NewPackageHandler(packageService *service.PackageService, requireAdmin func(http.Handler) http.Handler) *PackageHandler {
	return &PackageHandler{packageService: packageService, requireAdmin: requireAdmin}
}

func (h *PackageHandler) Routes() chi.Router {
	r := newRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.packageService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"packages": packages,
	})
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pkg, err := h.packageService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"package": pkg,
	})
}

func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.PackageInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pkg, err := h.packageService.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit(r, audit.EventPackageCreate, pkg.ID, pkg.Name)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Package created successfully",
		"package": pkg,
	})
}

func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req service.PackageInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pkg, err := h.packageService.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit(r, audit.EventPackageUpdate, pkg.ID, pkg.Name)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Package updated successfully",
		"package": pkg,
	})
}

func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	deleted, err := h.packageService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.audit(r, audit.EventPackageDelete, deleted.ID, deleted.Name)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Package deleted successfully",
		"deleted": deleted,
	})
}

func (h *PackageHandler) audit(r *http.Request, event audit.EventType, id int64, name string) {
	e := audit.Event{
		Type:    event,
		Details: map[string]interface{}{"package_id": id, "package_name": name},
	}
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		e.UserID = claims.UserID
		e.Username = claims.Username
	}
	audit.LogFromRequest(r, e)
}

func packageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("Invalid package ID")
	}
	return id, nil
}
