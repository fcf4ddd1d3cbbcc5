package policy

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
)

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetBySalonID(ctx context.Context, salonID int64) (*domain.BookingPolicy, error)
	Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error)
}

// SalonServiceClient интерфейс клиента для SalonService
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
