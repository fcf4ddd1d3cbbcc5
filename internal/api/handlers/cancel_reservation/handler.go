package cancel_reservation

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	"github.com/salonbook/booking-service/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingPrincipal     = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidTransition    = "бронирование не может быть отменено из текущего статуса"
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

// Handle PATCH /api/v1/reservations/{reservationId}/cancel
// Повторная отмена уже отменённого бронирования отвечает 200 без изменений.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reservationIDStr := vars["reservationId"]

	reservationID, err := strconv.ParseInt(reservationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	// Тело опционально, пустое тело означает отмену без указания причины
	var req CancelReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.Cancel(r.Context(), reservationID, req.ToServiceRequest(), principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrAlreadyCancelled):
			// Идемпотентная отмена: запись уже в нужном состоянии
			h.logger.Info("PATCH /reservations/{id}/cancel - Already cancelled: reservation_id=%d", reservationID)
			handlers.RespondJSON(w, http.StatusOK, nil)

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Access denied: reservation_id=%d, principal_id=%d",
				reservationID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid transition: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /reservations/{id}/cancel - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("PATCH /reservations/{id}/cancel - Storage unavailable: reservation_id=%d", reservationID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("PATCH /reservations/{id}/cancel - Failed to cancel reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/cancel - Reservation cancelled successfully: reservation_id=%d, principal_id=%d",
		reservationID, principal.ID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
