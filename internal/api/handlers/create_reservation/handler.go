package create_reservation

import (
	"errors"
	"net/http"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	createReservation "github.com/salonbook/booking-service/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingPrincipal   = "отсутствует ID пользователя"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgSalonNotFound      = "салон не найден"
	msgMenuItemNotFound   = "позиция меню не найдена"
	msgMenuItemForeign    = "позиция меню принадлежит другому салону"
	msgSalonClosed        = "салон закрыт в выбранную дату"
	msgInvalidDate        = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgUnavailable        = "сервис временно недоступен, повторите запрос позже"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(principal.ID)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotNotAvailable):
			h.logger.Warn("POST /reservations - Slot not available: user_id=%d, salon_id=%d", principal.ID, req.SalonID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createReservation.ErrSalonNotFound):
			h.logger.Warn("POST /reservations - Salon not found: salon_id=%d", req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createReservation.ErrMenuItemNotFound):
			h.logger.Warn("POST /reservations - Menu item not found: salon_id=%d, menu_id=%d", req.SalonID, req.MenuID)
			handlers.RespondNotFound(w, msgMenuItemNotFound)

		case errors.Is(err, createReservation.ErrMenuItemForeign):
			h.logger.Warn("POST /reservations - Menu item foreign: salon_id=%d, menu_id=%d", req.SalonID, req.MenuID)
			handlers.RespondBadRequest(w, msgMenuItemForeign)

		case errors.Is(err, createReservation.ErrSalonClosed):
			h.logger.Warn("POST /reservations - Salon closed: salon_id=%d, date=%s", req.SalonID, req.Date)
			handlers.RespondBadRequest(w, msgSalonClosed)

		case errors.Is(err, createReservation.ErrInvalidDate):
			h.logger.Warn("POST /reservations - Invalid date: salon_id=%d, date=%s", req.SalonID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createReservation.ErrDateTooFarInFuture):
			h.logger.Warn("POST /reservations - Date too far in future: salon_id=%d, date=%s", req.SalonID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createReservation.ErrInvalidTimeSlot):
			h.logger.Warn("POST /reservations - Invalid time slot: salon_id=%d, time=%s", req.SalonID, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createReservation.ErrTooLateToBook):
			h.logger.Warn("POST /reservations - Too late to book: salon_id=%d, time=%s", req.SalonID, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createReservation.ErrUnavailable):
			h.logger.Error("POST /reservations - Storage unavailable: user_id=%d, salon_id=%d", principal.ID, req.SalonID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, salon_id=%d, error=%v",
				principal.ID, req.SalonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, user_id=%d, salon_id=%d",
		result.ID, principal.ID, req.SalonID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
