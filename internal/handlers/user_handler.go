package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/middleware"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/services"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

type UserHandler struct {
	sessions *services.SessionService
	profiles *services.ProfileService
	logger   pkglog.Logger
}

func NewUserHandler(sessions *services.SessionService, profiles *services.ProfileService, logger pkglog.Logger) *UserHandler {
	return &UserHandler{sessions: sessions, profiles: profiles, logger: logger}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	user, err := h.sessions.Register(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Str("email", req.Email).Msg("register failed")
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User registered successfully", user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	resp, err := h.sessions.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful", resp)
}

func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	tokens, err := h.sessions.Refresh(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tokens refreshed successfully", tokens)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Email is required"))
		return
	}

	if err := h.sessions.ResetPassword(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password reset email sent successfully", nil)
}

// Me returns the caller's profile, creating a default record when a verified
// identity has none yet.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetAccessToken(r.Context())
	user, err := h.sessions.ResolveUser(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User profile retrieved successfully", user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), uid, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User profile updated successfully", user)
}

func (h *UserHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.profiles.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	// uid and email are immutable once assigned by the identity provider.
	delete(fields, "id")
	delete(fields, "uid")
	delete(fields, "email")
	delete(fields, "createdAt")

	if err := h.profiles.Update(r.Context(), chi.URLParam(r, "id"), fields); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated successfully", nil)
}

func (h *UserHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully", nil)
}
