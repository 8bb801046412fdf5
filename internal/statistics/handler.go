package statistics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splitter-app/splitter/pkg/middleware"
	"github.com/splitter-app/splitter/pkg/response"
)

// Handler handles HTTP requests for the statistics view
type Handler struct {
	service *Service
}

// NewHandler creates a new statistics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for statistics endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Period)

	return r
}

// Period handles GET /statistics
// @Summary      Payment statistics
// @Description  Paid/unpaid sums and counts for a year or month, plus the monthly breakdown and available years
// @Tags         statistics
// @Produce      json
// @Param        year query int false "Year (default: current)"
// @Param        month query int false "Month 1-12 (default: whole year)"
// @Success      200 {object} response.APIResponse{data=Report}
// @Router       /statistics [get]
func (h *Handler) Period(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			response.BadRequest(w, "Invalid year")
			return
		}
		year = parsed
	}

	month := 0
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid month")
			return
		}
		month = parsed
	}

	report, err := h.service.Period(r.Context(), userID, year, month)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to compute statistics")
		return
	}

	response.JSON(w, http.StatusOK, report)
}
