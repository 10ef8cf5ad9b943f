// internal/users/handlers.go
// HTTP handlers for user profiles and avatar upload.

package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
	"github.com/kinfolk-app/kinfolk-backend/internal/uploads"
)

type Handlers struct {
	service Service
	uploads *uploads.Service
}

func NewHandlers(service Service, uploadService *uploads.Service) *Handlers {
	return &Handlers{service: service, uploads: uploadService}
}

// GetProfile handles GET /api/users/{id}
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// UpdateProfile handles PUT /api/users/{id}
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, callerID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, profile, "Profile updated", http.StatusOK)
}

// UploadAvatar handles POST /api/users/avatar
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.ErrorResponse(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, kind, err := h.uploads.UploadFile("avatars", file, header)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if kind != "image" {
		utils.HandleError(w, apperrors.Validation("Avatar must be an image"))
		return
	}

	user, err := h.service.UpdateAvatar(r.Context(), userID, url)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, user, "Avatar updated", http.StatusOK)
}
