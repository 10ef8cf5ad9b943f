// internal/stories/handlers.go
// HTTP handlers for the story feed, threads, likes and media upload.

package stories

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

// ListFeed handles GET /api/stories
func (h *Handlers) ListFeed(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	list, err := h.service.ListFeed(r.Context(), page, limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, list, http.StatusOK)
}

// ListChannelStories handles GET /api/channels/{id}/stories
func (h *Handlers) ListChannelStories(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}
	page, limit := pagination(r)

	list, err := h.service.ListChannelStories(r.Context(), channelID, page, limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, list, http.StatusOK)
}

// GetStory handles GET /api/stories/{id}
func (h *Handlers) GetStory(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	story, err := h.service.GetStory(r.Context(), storyID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, story, http.StatusOK)
}

// GetThread handles GET /api/stories/{id}/thread
func (h *Handlers) GetThread(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	thread, err := h.service.GetThread(r.Context(), storyID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, thread, http.StatusOK)
}

// CreateStory handles POST /api/stories
func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.CreateStory(r.Context(), userID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, result.Story, result.Message, http.StatusCreated)
}

// UpdateStory handles PUT /api/stories/{id}
func (h *Handlers) UpdateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	storyID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	var req UpdateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	story, err := h.service.UpdateStory(r.Context(), storyID, userID, &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponseWithMessage(w, story, "Story updated", http.StatusOK)
}

// DeleteStory handles DELETE /api/stories/{id}
func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	storyID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteStory(r.Context(), storyID, userID); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.MessageResponse(w, "Story deleted", http.StatusOK)
}

// ToggleLike handles POST /api/stories/{id}/like
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.HandleError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	storyID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	result, err := h.service.ToggleLike(r.Context(), storyID, userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// UploadMedia handles POST /api/stories/media
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
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

	url, kind, err := h.uploads.UploadFile("stories", file, header)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]string{
		"url":  url,
		"type": kind,
	}, http.StatusCreated)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	return page, limit
}
