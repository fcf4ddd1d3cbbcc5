package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	getAvailableSlots "github.com/salonbook/booking-service/internal/usecase/get_available_slots"
)

const (
	msgInvalidSalonID   = "некорректный ID салона"
	msgInvalidMenuID    = "некорректный ID позиции меню"
	msgMissingMenuID    = "ID позиции меню обязателен"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgSalonNotFound    = "салон не найден"
	msgMenuItemNotFound = "позиция меню не найдена"
	msgMenuItemForeign  = "позиция меню принадлежит другому салону"
	msgDateTooFar       = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/available-slots
// Query params: menuId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	salonIDStr := vars["salonId"]
	salonID, err := strconv.ParseInt(salonIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	menuIDStr := r.URL.Query().Get("menuId")
	if menuIDStr == "" {
		h.logger.Warn("GET /salons/{id}/available-slots - Missing menu ID")
		handlers.RespondBadRequest(w, msgMissingMenuID)
		return
	}

	menuID, err := strconv.ParseInt(menuIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid menu ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMenuID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /salons/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(salonID, menuID, dateStr)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrSalonNotFound):
			h.logger.Warn("GET /salons/{id}/available-slots - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, getAvailableSlots.ErrMenuItemNotFound):
			h.logger.Warn("GET /salons/{id}/available-slots - Menu item not found: salon_id=%d, menu_id=%d",
				salonID, menuID)
			handlers.RespondNotFound(w, msgMenuItemNotFound)

		case errors.Is(err, getAvailableSlots.ErrMenuItemForeign):
			h.logger.Warn("GET /salons/{id}/available-slots - Menu item foreign: salon_id=%d, menu_id=%d",
				salonID, menuID)
			handlers.RespondBadRequest(w, msgMenuItemForeign)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /salons/{id}/available-slots - Date too far in future: salon_id=%d, date=%s",
				salonID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /salons/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("GET /salons/{id}/available-slots - Failed to get slots: salon_id=%d, menu_id=%d, error=%v",
				salonID, menuID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /salons/{id}/available-slots - Slots retrieved successfully: salon_id=%d, menu_id=%d, slots_count=%d",
		salonID, menuID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
