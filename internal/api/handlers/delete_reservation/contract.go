package delete_reservation

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
)

type ReservationService interface {
	Delete(ctx context.Context, id int64, principal domain.Principal) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
