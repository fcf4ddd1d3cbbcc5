package update_booking_policy

import (
	"context"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/service/policy/models"
)

type PolicyService interface {
	Update(ctx context.Context, salonID int64, req *models.UpdatePolicyRequest, principal domain.Principal) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
