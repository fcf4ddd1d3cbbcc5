package get_booking_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	policyService "github.com/salonbook/booking-service/internal/service/policy"
)

const (
	msgInvalidSalonID = "некорректный ID салона"
	msgSalonNotFound  = "салон не найден"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/policy
// Для салона без сохранённой политики возвращаются дефолтные значения
// с isDefault=true.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salonIDStr := vars["salonId"]

	salonID, err := strconv.ParseInt(salonIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/policy - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	result, err := h.service.GetBySalonID(r.Context(), salonID)
	if err != nil {
		switch {
		case errors.Is(err, policyService.ErrSalonNotFound):
			h.logger.Warn("GET /salons/{id}/policy - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		default:
			h.logger.Error("GET /salons/{id}/policy - Failed to get policy: salon_id=%d, error=%v", salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /salons/{id}/policy - Policy retrieved successfully: salon_id=%d, is_default=%v",
		salonID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
