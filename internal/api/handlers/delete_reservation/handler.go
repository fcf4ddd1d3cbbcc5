package delete_reservation

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
	msgMissingPrincipal     = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
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

// Handle DELETE /api/v1/reservations/{reservationId}
// Физическое удаление записи, доступно только оператору салона.
// Клиенты освобождают слот через PATCH /cancel.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("DELETE /reservations/{id} - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	err = h.service.Delete(r.Context(), reservationID, principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("DELETE /reservations/{id} - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("DELETE /reservations/{id} - Access denied: reservation_id=%d, principal_id=%d",
				reservationID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("DELETE /reservations/{id} - Storage unavailable: reservation_id=%d", reservationID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("DELETE /reservations/{id} - Failed to delete reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /reservations/{id} - Reservation deleted: reservation_id=%d, principal_id=%d",
		reservationID, principal.ID)
	w.WriteHeader(http.StatusNoContent)
}
