package get_user_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	"github.com/salonbook/booking-service/internal/service/reservations"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

const (
	msgInvalidUserID    = "некорректный ID пользователя"
	msgMissingPrincipal = "отсутствует ID пользователя"
	msgInvalidStatus    = "некорректный статус бронирования"
	msgForbidden        = "доступ запрещен"
	msgUnavailable      = "сервис временно недоступен, повторите запрос позже"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/reservations
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userIDStr := vars["userId"]

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{id}/reservations - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{id}/reservations - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	req := &models.GetUserReservationsRequest{UserID: userID}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		req.Status = &statusStr
	}

	// Сервис проверит, что пользователь запрашивает собственную историю
	result, err := h.service.GetUserReservations(r.Context(), req, principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /users/{id}/reservations - Access denied: user_id=%d, principal_id=%d",
				userID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /users/{id}/reservations - Invalid status: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("GET /users/{id}/reservations - Storage unavailable: user_id=%d", userID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("GET /users/{id}/reservations - Failed to get reservations: user_id=%d, error=%v",
				userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/{id}/reservations - Reservations retrieved successfully: user_id=%d, count=%d",
		userID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
