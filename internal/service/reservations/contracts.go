package reservations

import (
	"context"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error
	Cancel(ctx context.Context, id int64, from domain.ReservationStatus, reason string) error
	Delete(ctx context.Context, id int64) error
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
