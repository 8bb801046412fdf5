package debt

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitter-app/splitter/pkg/middleware"
	"github.com/splitter-app/splitter/pkg/response"
)

// Handler handles HTTP requests for the debt views
type Handler struct {
	service *Service
}

// NewHandler creates a new debt handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for debt endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/debtors", h.Debtors)
	r.Get("/my", h.MyDebts)
	r.Get("/history", h.History)

	return r
}

// Debtors handles GET /debts/debtors
// @Summary      Who owes me
// @Description  Unpaid items created by the caller, grouped by debtor
// @Tags         debts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Group}
// @Router       /debts/debtors [get]
func (h *Handler) Debtors(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groups, err := h.service.DebtorsOwedTo(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to load debtors")
		return
	}

	if groups == nil {
		groups = []*Group{}
	}

	response.JSON(w, http.StatusOK, groups)
}

// MyDebts handles GET /debts/my
// @Summary      Whom I owe
// @Description  The caller's unpaid items, grouped by creditor
// @Tags         debts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Group}
// @Router       /debts/my [get]
func (h *Handler) MyDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groups, err := h.service.MyDebts(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to load debts")
		return
	}

	if groups == nil {
		groups = []*Group{}
	}

	response.JSON(w, http.StatusOK, groups)
}

// History handles GET /debts/history
// @Summary      Settlement history
// @Description  The caller's paid and unpaid items grouped by creditor, capped per group
// @Tags         debts
// @Produce      json
// @Param        limit query int false "Per-creditor item cap"
// @Success      200 {object} response.APIResponse{data=[]Group}
// @Router       /debts/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	groups, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, "Failed to load history")
		return
	}

	if groups == nil {
		groups = []*Group{}
	}

	response.JSON(w, http.StatusOK, groups)
}
