package get_user_reservations

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

type ReservationService interface {
	GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest, principal domain.Principal) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
