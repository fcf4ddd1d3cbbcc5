package get_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	"github.com/salonbook/booking-service/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgNotFound             = "бронирование не найдено"
	msgMissingPrincipal     = "отсутствует ID пользователя"
	msgForbidden            = "доступ запрещен"
	msgUnavailable          = "сервис временно недоступен, повторите запрос позже"
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

// Handle GET /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("GET /reservations/{id} - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	// Сервис сам проверит права доступа
	reservation, err := h.service.GetByID(r.Context(), reservationID, principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("GET /reservations/{id} - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /reservations/{id} - Access denied: reservation_id=%d, principal_id=%d",
				reservationID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("GET /reservations/{id} - Storage unavailable: reservation_id=%d", reservationID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("GET /reservations/{id} - Failed to get reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservations/{id} - Reservation retrieved successfully: reservation_id=%d, principal_id=%d",
		reservationID, principal.ID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
