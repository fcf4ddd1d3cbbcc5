package cancel_reservation

import (
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest() *models.CancelReservationRequest {
	return &models.CancelReservationRequest{
		Reason: r.Reason,
	}
}
