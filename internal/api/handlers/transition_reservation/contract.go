package transition_reservation

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

type ReservationService interface {
	Transition(ctx context.Context, id int64, event domain.ReservationEvent, principal domain.Principal) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
