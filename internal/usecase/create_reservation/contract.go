package create_reservation

import (
	"context"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
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

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
