package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/booking-service/internal/domain"
	policyStorage "github.com/salonbook/booking-service/internal/infra/storage/policy"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/pkg/ptr"
	"github.com/salonbook/booking-service/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeReservationRepo struct {
	reservations []*domain.Reservation
	err          error
}

func (f *fakeReservationRepo) GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error) {
	return f.reservations, f.err
}

type fakePolicyRepo struct {
	policy *domain.BookingPolicy
	err    error
}

func (f *fakePolicyRepo) GetBySalonID(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.policy, nil
}

type fakeSalonClient struct {
	salon    *salonservice.Salon
	menuItem *salonservice.MenuItem
	salonErr error
	menuErr  error
}

func (f *fakeSalonClient) GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error) {
	if f.salonErr != nil {
		return nil, f.salonErr
	}
	return f.salon, nil
}

func (f *fakeSalonClient) GetMenuItem(ctx context.Context, salonID, menuID int64) (*salonservice.MenuItem, error) {
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return f.menuItem, nil
}

// Салон работает в понедельник 09:00-18:00
func testSalon() *salonservice.Salon {
	return &salonservice.Salon{
		ID:   1,
		Name: "Cut & Go",
		OpeningHours: salonservice.WeekSchedule{
			Monday: salonservice.DaySchedule{
				IsOpen:    true,
				OpenTime:  ptr.Ptr("09:00"),
				CloseTime: ptr.Ptr("18:00"),
			},
		},
	}
}

func testMenuItem() *salonservice.MenuItem {
	return &salonservice.MenuItem{
		ID:              10,
		SalonID:         1,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           1500,
	}
}

// monday - будущий понедельник относительно now в тестах
var (
	monday  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2025, 5, 26, 12, 0, 0, 0, time.UTC)
)

func newTestUseCase(repo *fakeReservationRepo, policies *fakePolicyRepo, client *fakeSalonClient) *UseCase {
	uc := NewUseCase(repo, policies, client, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestUseCase_Execute_FullDay(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	require.NoError(t, err)

	// 09:00-18:00 при шаге 30 и визите 30 минут дают 18 стартов
	require.Len(t, resp.Slots, 18)
	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("17:30"), resp.Slots[17].StartTime)
	assert.Equal(t, 30, resp.DurationMinutes)
}

func TestUseCase_Execute_OccupiedSlotExcluded(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{reservations: []*domain.Reservation{
			{StartTime: "10:00", DurationMinutes: 30, Status: domain.StatusConfirmed},
		}},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 17)
	for _, slot := range resp.Slots {
		assert.NotEqual(t, types.TimeString("10:00"), slot.StartTime)
	}
}

func TestUseCase_Execute_ClosedDay(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: sunday})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Execute_PastDate(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	past := time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: past})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Execute_SalonNotFound(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salonErr: salonservice.ErrSalonNotFound},
	)

	_, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	assert.ErrorIs(t, err, ErrSalonNotFound)
}

func TestUseCase_Execute_MenuItemForeign(t *testing.T) {
	foreign := testMenuItem()
	foreign.SalonID = 2

	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: foreign},
	)

	_, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	assert.ErrorIs(t, err, ErrMenuItemForeign)
}

func TestUseCase_Execute_AdvanceLimit(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{policy: &domain.BookingPolicy{
			SalonID:                1,
			SlotGranularityMinutes: 30,
			AdvanceBookingDays:     3,
			MinNoticeMinutes:       60,
		}},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	// monday на 7 дней дальше testNow, лимит 3 дня
	_, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestUseCase_Execute_CustomGranularity(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePolicyRepo{policy: &domain.BookingPolicy{
			SalonID:                1,
			SlotGranularityMinutes: 60,
			MinNoticeMinutes:       60,
		}},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
	)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, MenuID: 10, Date: monday})
	require.NoError(t, err)
	// Шаг 60 минут: 09:00..17:00
	require.Len(t, resp.Slots, 9)
	assert.Equal(t, types.TimeString("17:00"), resp.Slots[8].StartTime)
}
