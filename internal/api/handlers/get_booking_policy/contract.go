package get_booking_policy

import (
	"context"

	"github.com/salonbook/booking-service/internal/service/policy/models"
)

type PolicyService interface {
	GetBySalonID(ctx context.Context, salonID int64) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
