package get_salon_reservations

import (
	"strconv"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

// ToServiceRequest создает запрос сервиса из path и query параметров.
// Параметры startDate, endDate, status и includeInactive опциональны.
func ToServiceRequest(salonID int64, startDateStr, endDateStr, statusStr, includeInactiveStr string) (*models.GetSalonReservationsRequest, error) {
	req := &models.GetSalonReservationsRequest{SalonID: salonID}

	if startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &endDate
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
