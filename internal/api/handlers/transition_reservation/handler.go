package transition_reservation

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingPrincipal     = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidTransition    = "переход недопустим из текущего статуса бронирования"
	msgTooEarlyToComplete   = "визит ещё не завершился"
	msgUnavailable          = "сервис временно недоступен, повторите запрос позже"
)

// Handler обрабатывает события жизненного цикла бронирования.
// Один и тот же handler обслуживает confirm и complete, событие фиксируется
// при создании.
type Handler struct {
	service ReservationService
	event   domain.ReservationEvent
	logger  Logger
}

// NewConfirmHandler создает handler для PATCH /reservations/{id}/confirm
func NewConfirmHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{service: service, event: domain.EventConfirm, logger: logger}
}

// NewCompleteHandler создает handler для PATCH /reservations/{id}/complete
func NewCompleteHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{service: service, event: domain.EventComplete, logger: logger}
}

// Handle PATCH /api/v1/reservations/{reservationId}/{confirm|complete}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	op := fmt.Sprintf("PATCH /reservations/{id}/%s", h.event)

	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid reservation ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing principal", op)
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	result, err := h.service.Transition(r.Context(), reservationID, h.event, principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("%s - Reservation not found: reservation_id=%d", op, reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: reservation_id=%d, principal_id=%d", op, reservationID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrTooEarlyToComplete):
			h.logger.Warn("%s - Slot has not elapsed: reservation_id=%d", op, reservationID)
			handlers.RespondError(w, http.StatusConflict, msgTooEarlyToComplete)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: reservation_id=%d", op, reservationID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("%s - Storage unavailable: reservation_id=%d", op, reservationID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("%s - Failed to apply transition: reservation_id=%d, error=%v", op, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Transition applied successfully: reservation_id=%d, status=%s, principal_id=%d",
		op, reservationID, result.Status, principal.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
