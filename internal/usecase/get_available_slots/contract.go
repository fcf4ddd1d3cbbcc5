package get_available_slots

import (
	"context"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error)
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetBySalonID(ctx context.Context, salonID int64) (*domain.BookingPolicy, error)
}

// SalonServiceClient интерфейс клиента для SalonService
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	GetMenuItem(ctx context.Context, salonID, menuID int64) (*salonservice.MenuItem, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
