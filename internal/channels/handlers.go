// internal/channels/handlers.go
// HTTP handlers for channel management.

package channels

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

type Handlers struct {
	service Service
}

func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// ListChannels handles GET /api/channels with an optional ?user_id filter
func (h *Handlers) ListChannels(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponse(w, "Invalid user_id", http.StatusBadRequest)
			return
		}
		userID = &id
	}

	list, err := h.service.ListChannels(r.Context(), userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, list, http.StatusOK)
}

// GetChannel handles GET /api/channels/{id}
func (h *Handlers) GetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := h.service.GetChannel(r.Context(), channelID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, channel, http.StatusOK)
}

// CreateChannel handles POST /api/channels
func (h *Handlers) CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	channel, err := h.service.CreateChannel(r.Context(), userID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, channel, "Channel created", http.StatusCreated)
}

// UpdateChannel handles PUT /api/channels/{id}
func (h *Handlers) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	var req UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	channel, err := h.service.UpdateChannel(r.Context(), channelID, userID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, channel, "Channel updated", http.StatusOK)
}

// DeleteChannel handles DELETE /api/channels/{id}
func (h *Handlers) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteChannel(r.Context(), channelID, userID); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Channel deleted", http.StatusOK)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
