package update_booking_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/api/middleware"
	policyService "github.com/salonbook/booking-service/internal/service/policy"
	"github.com/salonbook/booking-service/internal/service/policy/models"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingPrincipal   = "отсутствует ID пользователя"
	msgSalonNotFound      = "салон не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidPolicy      = "некорректные параметры политики бронирования"
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

// Handle PUT /api/v1/salons/{salonId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salonIDStr := vars["salonId"]

	salonID, err := strconv.ParseInt(salonIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/policy - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("PUT /salons/{id}/policy - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	var req models.UpdatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salons/{id}/policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Сервис проверит, что принципал - оператор этого салона
	result, err := h.service.Update(r.Context(), salonID, &req, principal)
	if err != nil {
		switch {
		case errors.Is(err, policyService.ErrSalonNotFound):
			h.logger.Warn("PUT /salons/{id}/policy - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, policyService.ErrAccessDenied):
			h.logger.Warn("PUT /salons/{id}/policy - Access denied: salon_id=%d, principal_id=%d",
				salonID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, policyService.ErrInvalidInput):
			h.logger.Warn("PUT /salons/{id}/policy - Invalid policy: salon_id=%d, error=%v", salonID, err)
			handlers.RespondBadRequest(w, msgInvalidPolicy)

		default:
			h.logger.Error("PUT /salons/{id}/policy - Failed to update policy: salon_id=%d, error=%v",
				salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /salons/{id}/policy - Policy updated successfully: salon_id=%d", salonID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
