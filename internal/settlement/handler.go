package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitter-app/splitter/internal/allocation"
	"github.com/splitter-app/splitter/pkg/middleware"
	"github.com/splitter-app/splitter/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/code/{code}", h.GetByCode)

	r.Post("/items/{id}/pay", h.MarkItemPaid)
	r.Post("/items/bulk-pay", h.BulkMarkPaid)
	r.Delete("/items/{id}", h.DeleteItem)

	return r
}

// Create handles POST /settlements
// @Summary      Create a settlement
// @Description  Creates a settlement, splits the adjustments across the participants and notifies everyone who owes
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body CreateSettlementRequest true "Settlement creation request"
// @Success      201 {object} response.APIResponse{data=SettlementWithItems}
// @Failure      400 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingVendor),
			errors.Is(err, ErrInvalidDate),
			errors.Is(err, ErrDuplicateParticipant),
			errors.Is(err, ErrUnknownParticipant),
			errors.Is(err, allocation.ErrNoParticipants),
			errors.Is(err, allocation.ErrNegativeAmount),
			errors.Is(err, allocation.ErrDiscountOutOfRange):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to create settlement")
		}
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

// List handles GET /settlements
// @Summary      List settlements
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Settlement}
// @Router       /settlements [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	if settlements == nil {
		settlements = []*Settlement{}
	}

	response.JSON(w, http.StatusOK, settlements)
}

// GetByID handles GET /settlements/{id}
// @Summary      Get settlement by ID
// @Description  Get a settlement with all its items
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementWithItems}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// GetByCode handles GET /settlements/code/{code}
// @Summary      Get settlement by public code
// @Tags         settlements
// @Produce      json
// @Param        code path string true "Settlement code"
// @Success      200 {object} response.APIResponse{data=SettlementWithItems}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/code/{code} [get]
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Invalid settlement code")
		return
	}

	result, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// MarkItemPaid handles POST /settlements/items/{id}/pay
// @Summary      Pay a settlement item
// @Description  The item's participant marks their share as paid; already-paid items are a no-op
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} response.APIResponse{data=Item}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/items/{id}/pay [post]
func (h *Handler) MarkItemPaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	item, err := h.service.MarkItemPaid(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotParticipant) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark item paid")
		return
	}

	response.JSON(w, http.StatusOK, item)
}

// BulkMarkPaid handles POST /settlements/items/bulk-pay
// @Summary      Pay several items at once
// @Description  Every item of the batch must belong to the caller; the whole batch is rejected otherwise
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body BulkPayRequest true "Item IDs to pay"
// @Success      200 {object} response.APIResponse{data=BulkPayResult}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /settlements/items/bulk-pay [post]
func (h *Handler) BulkMarkPaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req BulkPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.BulkMarkPaid(r.Context(), req.ItemIDs, userID)
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) {
			response.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotParticipant) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to bulk mark paid")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// DeleteItem handles DELETE /settlements/items/{id}
// @Summary      Delete a settlement item
// @Description  Soft-deletes an item; only the item's creator may do so
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/items/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteItem(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotItemCreator) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete item")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
