package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitter-app/splitter/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// AuthRoutes returns the unauthenticated register/login router
func (h *Handler) AuthRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

// Register handles POST /auth/register
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, token, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ErrMissingField) || errors.Is(err, ErrWeakPassword) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register")
		return
	}

	response.JSON(w, http.StatusCreated, &AuthResponse{Token: token, User: user.ToResponse()})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=AuthResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, &AuthResponse{Token: token, User: user.ToResponse()})
}

// List handles GET /users
// @Summary      List users
// @Description  All users, for the participant picker on the settlement form
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	resp := make([]*UserResponse, len(users))
	for i, u := range users {
		resp[i] = u.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}
