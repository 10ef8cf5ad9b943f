// internal/auth/handlers.go
// HTTP handlers for registration, login and session management.

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

type Handlers struct {
	service Service
}

func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, resp, "Account created", http.StatusCreated)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := ExtractToken(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Logged out", http.StatusOK)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, user, http.StatusOK)
}
