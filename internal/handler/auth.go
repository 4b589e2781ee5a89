package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightwash/catalog-server/internal/audit"
	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/service"
	"github.com/brightwash/catalog-server/internal/token"
	"github.com/brightwash/catalog-server/internal/util"
)

type AuthHandler struct {
	authService  *service.AuthService
	loginLimiter func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, loginLimiter func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, loginLimiter: loginLimiter}
}

func (h *AuthHandler) Routes() chi.Router {
	r := newRouter()

	r.Post("/setup", h.Setup)
	if h.loginLimiter != nil {
		r.With(h.loginLimiter).Post("/login", h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Get("/verify", h.Verify)
	r.Post("/verify", h.Verify)

	return r
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req service.SetupInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Setup(r.Context(), req)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeSetupCompleted {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventSetupRejected})
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventSetupComplete,
		UserID:   user.ID,
		Username: user.Username,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Admin user created successfully",
		"user": map[string]any{
			"id":         user.ID,
			"username":   user.Username,
			"created_at": user.CreatedAt,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			audit.LogFromRequest(r, audit.Event{
				Type:     audit.EventLoginFailure,
				Username: util.MaskUsername(req.Username),
			})
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventLoginSuccess,
		UserID:   result.User.ID,
		Username: result.User.Username,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"user":    userResponse{ID: result.User.ID, Username: result.User.Username},
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	raw, ok := token.ExtractBearer(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, apperrors.InvalidToken())
		return
	}

	claims, err := h.authService.Verify(raw)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userResponse{ID: claims.UserID, Username: claims.Username},
	})
}
