package meal

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/httputil"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/user"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// Handler contains HTTP handlers for the meals resource
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListResponse wraps a user's meals
type ListResponse struct {
	Meals []Meal `json:"meals"`
}

// CountResponse wraps a count under the meals key
type CountResponse struct {
	Meals Count `json:"meals"`
}

// Response wraps a single meal
type Response struct {
	Meal *Meal `json:"meal"`
}

// ListByUser handles listing a user's meals
// @Summary      List a user's meals
// @Tags         meals
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} ListResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid id"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals/{userId} [get]
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, err := validation.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, logger, err, "list meals")
		return
	}

	meals, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, logger, err, "list meals")
		return
	}

	httputil.RespondJSON(w, ListResponse{Meals: meals}, http.StatusOK)
}

// CountRegistered handles counting all of a user's meals
// @Summary      Count a user's meals
// @Tags         meals
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} CountResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals/{userId}/registered [get]
func (h *Handler) CountRegistered(w http.ResponseWriter, r *http.Request) {
	h.respondCount(w, r, "count registered meals", h.service.CountRegistered)
}

// CountInDiet handles counting a user's meals within the diet
// @Summary      Count a user's in-diet meals
// @Tags         meals
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} CountResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals/{userId}/in-diet [get]
func (h *Handler) CountInDiet(w http.ResponseWriter, r *http.Request) {
	h.respondCount(w, r, "count in-diet meals", h.service.CountInDiet)
}

// CountOutDiet handles counting a user's meals outside the diet
// @Summary      Count a user's out-of-diet meals
// @Tags         meals
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} CountResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals/{userId}/out-diet [get]
func (h *Handler) CountOutDiet(w http.ResponseWriter, r *http.Request) {
	h.respondCount(w, r, "count out-of-diet meals", h.service.CountOutDiet)
}

// BestInDietSequence handles the best streak of in-diet meals
// @Summary      Longest run of consecutive in-diet meals
// @Tags         meals
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} CountResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals/{userId}/sequence-in-diet [get]
func (h *Handler) BestInDietSequence(w http.ResponseWriter, r *http.Request) {
	h.respondCount(w, r, "best in-diet sequence", h.service.BestInDietSequence)
}

// Get handles fetching one of a user's meals
// @Summary      Get a meal
// @Tags         meals
// @Produce      json
// @Param        id path string true "Meal ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid id"
// @Failure      404 {object} httputil.ErrorResponse "User or meal not found"
// @Router       /meals/{id}/{userId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, userID, err := mealPath(r)
	if err != nil {
		h.respondError(w, logger, err, "get meal")
		return
	}

	m, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		h.respondError(w, logger, err, "get meal")
		return
	}

	httputil.RespondJSON(w, Response{Meal: m}, http.StatusOK)
}

// Create handles registering a meal
// @Summary      Register a meal
// @Tags         meals
// @Accept       json
// @Produce      json
// @Param        request body CreateInput true "Meal"
// @Success      201 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid body"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /meals [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var in CreateInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondInvalidBody(w, logger, err)
		return
	}

	m, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, logger, err, "create meal")
		return
	}

	logger.Info("meal created", "meal_id", m.ID, "user_id", m.UserID)
	httputil.RespondJSON(w, Response{Meal: m}, http.StatusCreated)
}

// Update handles editing an owned meal
// @Summary      Update a meal
// @Tags         meals
// @Accept       json
// @Produce      json
// @Param        id path string true "Meal ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Param        request body UpdateInput true "Fields to change"
// @Success      201 {object} Response
// @Failure      400 {object} httputil.ErrorResponse "Invalid id or body"
// @Failure      404 {object} httputil.ErrorResponse "Meal not found"
// @Router       /meals/{id}/{userId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, userID, err := mealPath(r)
	if err != nil {
		h.respondError(w, logger, err, "update meal")
		return
	}

	var in UpdateInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.RespondInvalidBody(w, logger, err)
		return
	}

	m, err := h.service.Update(r.Context(), id, userID, in)
	if err != nil {
		h.respondError(w, logger, err, "update meal")
		return
	}

	logger.Info("meal updated", "meal_id", m.ID, "user_id", m.UserID)
	httputil.RespondJSON(w, Response{Meal: m}, http.StatusCreated)
}

// Delete handles removing an owned meal
// @Summary      Delete a meal
// @Tags         meals
// @Param        id path string true "Meal ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid id"
// @Failure      404 {object} httputil.ErrorResponse "Meal not found"
// @Router       /meals/{id}/{userId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, userID, err := mealPath(r)
	if err != nil {
		h.respondError(w, logger, err, "delete meal")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		h.respondError(w, logger, err, "delete meal")
		return
	}

	logger.Info("meal deleted", "meal_id", id, "user_id", userID)
	httputil.RespondNoContent(w)
}

func (h *Handler) respondCount(w http.ResponseWriter, r *http.Request, action string, count func(context.Context, uuid.UUID) (int, error)) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, err := validation.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, logger, err, action)
		return
	}

	n, err := count(r.Context(), userID)
	if err != nil {
		h.respondError(w, logger, err, action)
		return
	}

	httputil.RespondJSON(w, CountResponse{Meals: Count{Count: n}}, http.StatusOK)
}

func (h *Handler) respondError(w http.ResponseWriter, logger *logging.Logger, err error, action string) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		logger.Warn(action + " failed: user not found")
		httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		logger.Warn(action + " failed: meal not found")
		httputil.RespondErrorWithCode(w, "Meal not found", httputil.CodeMealNotFound, http.StatusNotFound)
	default:
		httputil.RespondFailure(w, logger, err, action)
	}
}

func mealPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	userID, err := validation.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return id, userID, nil
}
