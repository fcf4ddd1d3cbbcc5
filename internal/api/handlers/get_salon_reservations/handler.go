package get_salon_reservations

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
	msgInvalidSalonID   = "некорректный ID салона"
	msgMissingPrincipal = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
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

// Handle GET /api/v1/salons/{salonId}/reservations
// Query params: startDate, endDate, status, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salonIDStr := vars["salonId"]

	salonID, err := strconv.ParseInt(salonIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/reservations - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("GET /salons/{id}/reservations - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingPrincipal)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(
		salonID,
		query.Get("startDate"),
		query.Get("endDate"),
		query.Get("status"),
		query.Get("includeInactive"),
	)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис проверит, что принципал - оператор этого салона
	result, err := h.service.GetSalonReservations(r.Context(), serviceReq, principal)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /salons/{id}/reservations - Access denied: salon_id=%d, principal_id=%d",
				salonID, principal.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /salons/{id}/reservations - Invalid parameters: salon_id=%d, error=%v", salonID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, reservations.ErrUnavailable):
			h.logger.Error("GET /salons/{id}/reservations - Storage unavailable: salon_id=%d", salonID)
			handlers.RespondUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("GET /salons/{id}/reservations - Failed to get reservations: salon_id=%d, error=%v",
				salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /salons/{id}/reservations - Reservations retrieved successfully: salon_id=%d, count=%d",
		salonID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
