package get_salon_reservations

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

type ReservationService interface {
	GetSalonReservations(ctx context.Context, req *models.GetSalonReservationsRequest, principal domain.Principal) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
