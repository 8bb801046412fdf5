package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitter-app/splitter/pkg/middleware"
	"github.com/splitter-app/splitter/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/{id}/read", h.MarkRead)
	r.Post("/read-all", h.MarkAllRead)

	return r
}

// ListResponse is the payload of the notification list endpoint. The client
// polls it every few seconds for the bell badge.
type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}

// List handles GET /notifications
// @Summary      List my notifications
// @Description  Returns the caller's notifications newest first, with the unread count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=ListResponse}
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	notifications, unread, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	if notifications == nil {
		notifications = []*Notification{}
	}

	response.JSON(w, http.StatusOK, &ListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

// MarkRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotRecipient) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	unread, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to count unread notifications")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": unread})
}

// MarkAllRead handles POST /notifications/read-all
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /notifications/read-all [post]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		response.InternalError(w, "Failed to mark notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": 0})
}
