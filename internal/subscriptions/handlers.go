// internal/subscriptions/handlers.go
// HTTP handlers for channel subscriptions.

package subscriptions

import (
	"encoding/json"
	"io"
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

// Subscribe handles POST /api/subscriptions/channels/{channelId}/subscribe
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "channelId")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	// The body is optional; a bare subscribe carries no request message
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Subscribe(r.Context(), userID, channelID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, result.Subscription, result.Message, http.StatusCreated)
}

// Unsubscribe handles POST /api/subscriptions/channels/{channelId}/unsubscribe
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "channelId")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), userID, channelID); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Unsubscribed from channel", http.StatusOK)
}

// ListSubscribers handles GET /api/subscriptions/channels/{channelId}/subscribers
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "channelId")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	list, err := h.service.ListChannelSubscribers(r.Context(), channelID, userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, list, http.StatusOK)
}

// RemoveSubscriber handles DELETE /api/subscriptions/channels/{channelId}/subscribers/{subscriberId}
func (h *Handlers) RemoveSubscriber(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	channelID, err := pathID(r, "channelId")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		utils.ErrorResponse(w, "Invalid subscriber ID", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveSubscriber(r.Context(), channelID, subscriberID, userID); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Subscriber removed", http.StatusOK)
}

// Approve handles PUT /api/subscriptions/{id}/approve
func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	subscriptionID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid subscription ID", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Approve(r.Context(), subscriptionID, userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, sub, "Subscription approved", http.StatusOK)
}

// Reject handles PUT /api/subscriptions/{id}/reject
func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	subscriptionID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid subscription ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Reject(r.Context(), subscriptionID, userID); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Subscription rejected", http.StatusOK)
}

// ListMine handles GET /api/subscriptions/user
func (h *Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	list, err := h.service.ListUserSubscriptions(r.Context(), userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, list, http.StatusOK)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
