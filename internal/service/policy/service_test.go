package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/booking-service/internal/domain"
	policyRepo "github.com/salonbook/booking-service/internal/infra/storage/policy"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/internal/service/policy/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakePolicyRepo struct {
	policy *domain.BookingPolicy
	err    error
	saved  *domain.BookingPolicy
}

func (f *fakePolicyRepo) GetBySalonID(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.policy, nil
}

func (f *fakePolicyRepo) Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	f.saved = p
	return p, nil
}

type fakeSalonClient struct {
	err error
}

func (f *fakeSalonClient) GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &salonservice.Salon{ID: salonID, Name: "Cut & Go"}, nil
}

var salonOperator = domain.Principal{ID: 1, Role: domain.RoleSalon}

func TestService_GetBySalonID_Default(t *testing.T) {
	svc := NewService(&fakePolicyRepo{err: policyRepo.ErrPolicyNotFound}, &fakeSalonClient{}, nopLogger{})

	resp, err := svc.GetBySalonID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	assert.Equal(t, domain.DefaultSlotGranularityMinutes, resp.SlotGranularityMinutes)
	assert.Equal(t, domain.DefaultMinNoticeMinutes, resp.MinNoticeMinutes)
}

func TestService_GetBySalonID_Stored(t *testing.T) {
	stored := &domain.BookingPolicy{
		SalonID:                1,
		SlotGranularityMinutes: 45,
		AdvanceBookingDays:     14,
		MinNoticeMinutes:       120,
	}
	svc := NewService(&fakePolicyRepo{policy: stored}, &fakeSalonClient{}, nopLogger{})

	resp, err := svc.GetBySalonID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, resp.IsDefault)
	assert.Equal(t, 45, resp.SlotGranularityMinutes)
}

func TestService_GetBySalonID_SalonNotFound(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakeSalonClient{err: salonservice.ErrSalonNotFound}, nopLogger{})

	_, err := svc.GetBySalonID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSalonNotFound)
}

func TestService_Update(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, &fakeSalonClient{}, nopLogger{})

	req := &models.UpdatePolicyRequest{
		SlotGranularityMinutes: 60,
		AdvanceBookingDays:     30,
		MinNoticeMinutes:       90,
	}

	resp, err := svc.Update(context.Background(), 1, req, salonOperator)
	require.NoError(t, err)
	assert.Equal(t, 60, resp.SlotGranularityMinutes)
	require.NotNil(t, repo.saved)
	assert.Equal(t, int64(1), repo.saved.SalonID)
}

func TestService_Update_AccessDenied(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakeSalonClient{}, nopLogger{})

	req := &models.UpdatePolicyRequest{SlotGranularityMinutes: 30, MinNoticeMinutes: 60}

	// Обычный пользователь
	_, err := svc.Update(context.Background(), 1, req, domain.Principal{ID: 1, Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Оператор другого салона
	_, err = svc.Update(context.Background(), 2, req, salonOperator)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Update_Validation(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakeSalonClient{}, nopLogger{})

	tests := []struct {
		name string
		req  models.UpdatePolicyRequest
	}{
		{"granularity too small", models.UpdatePolicyRequest{SlotGranularityMinutes: 1, MinNoticeMinutes: 60}},
		{"granularity too large", models.UpdatePolicyRequest{SlotGranularityMinutes: 500, MinNoticeMinutes: 60}},
		{"advance days negative", models.UpdatePolicyRequest{SlotGranularityMinutes: 30, AdvanceBookingDays: -1, MinNoticeMinutes: 60}},
		{"advance days too large", models.UpdatePolicyRequest{SlotGranularityMinutes: 30, AdvanceBookingDays: 400, MinNoticeMinutes: 60}},
		{"notice too large", models.UpdatePolicyRequest{SlotGranularityMinutes: 30, MinNoticeMinutes: 20000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), 1, &tt.req, salonOperator)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
