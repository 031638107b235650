package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/daily-diet-api/internal/httputil"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// Handler contains HTTP handlers for the users resource
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListResponse wraps the users collection
type ListResponse struct {
	Users []User `json:"users"`
}

// Response wraps a single user
type Response struct {
	User *User `json:"user"`
}

// List handles listing every user
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object} ListResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, logger, err, "list users")
		return
	}

	httputil.RespondJSON(w, ListResponse{Users: users}, http.StatusOK)
}

// Get handles fetching a user by id
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID (UUID)"
// @Success      200 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid id"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, logger, err, "get user")
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, logger, err, "get user")
		return
	}

	httputil.RespondJSON(w, Response{User: u}, http.StatusOK)
}

// Create handles user creation
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body Input true "User"
// @Success      201 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid body"
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var in Input
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondInvalidBody(w, logger, err)
		return
	}

	u, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, logger, err, "create user")
		return
	}

	logger.Info("user created", "user_id", u.ID)
	httputil.RespondJSON(w, Response{User: u}, http.StatusCreated)
}

// Update handles replacing a user's name and email
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID (UUID)"
// @Param        request body Input true "User"
// @Success      201 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid id or body"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, logger, err, "update user")
		return
	}

	var in Input
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondInvalidBody(w, logger, err)
		return
	}

	u, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.respondError(w, logger, err, "update user")
		return
	}

	logger.Info("user updated", "user_id", u.ID)
	httputil.RespondJSON(w, Response{User: u}, http.StatusCreated)
}

// Delete handles user removal
// @Summary      Delete a user and their meals
// @Tags         users
// @Param        id path string true "User ID (UUID)"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid id"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, logger, err, "delete user")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, logger, err, "delete user")
		return
	}

	logger.Info("user deleted", "user_id", id)
	httputil.RespondNoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, logger *logging.Logger, err error, action string) {
	if errors.Is(err, ErrNotFound) {
		logger.Warn(action + " failed: user not found")
		httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		return
	}
	httputil.RespondFailure(w, logger, err, action)
}
