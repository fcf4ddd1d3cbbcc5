package cancel_reservation

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

type ReservationService interface {
	Cancel(ctx context.Context, id int64, req *models.CancelReservationRequest, principal domain.Principal) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
