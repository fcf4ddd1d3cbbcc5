package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/booking-service/internal/domain"
	reservationRepo "github.com/salonbook/booking-service/internal/infra/storage/reservation"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// memRepo in-memory репозиторий с CAS-семантикой смены статуса
type memRepo struct {
	reservations map[int64]*domain.Reservation
	failWith     error
}

func newMemRepo(reservations ...*domain.Reservation) *memRepo {
	m := &memRepo{reservations: make(map[int64]*domain.Reservation)}
	for _, r := range reservations {
		m.reservations[r.ID] = r
	}
	return m
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	r, ok := m.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRepo) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*domain.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepo) GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*domain.Reservation
	for _, r := range m.reservations {
		if r.SalonID != filter.SalonID {
			continue
		}
		if !filter.IncludeInactive && filter.Status == nil && !r.IsActive() {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	r, ok := m.reservations[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if r.Status != from {
		return reservationRepo.ErrTransitionConflict
	}
	r.Status = to
	return nil
}

func (m *memRepo) Cancel(ctx context.Context, id int64, from domain.ReservationStatus, reason string) error {
	r, ok := m.reservations[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if r.Status != from {
		return reservationRepo.ErrTransitionConflict
	}
	now := time.Now()
	r.Status = domain.StatusCancelled
	r.CancellationReason = &reason
	r.CancelledAt = &now
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.reservations[id]; !ok {
		return reservationRepo.ErrReservationNotFound
	}
	delete(m.reservations, id)
	return nil
}

var (
	owner    = domain.Principal{ID: 100, Role: domain.RoleUser}
	operator = domain.Principal{ID: 1, Role: domain.RoleSalon}
	stranger = domain.Principal{ID: 999, Role: domain.RoleUser}
)

func testReservation(status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:              1,
		SalonID:         1,
		UserID:          100,
		Date:            time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          status,
		MenuID:          10,
		MenuName:        "Haircut",
		MenuPrice:       1500,
	}
}

func newTestService(repo *memRepo, now time.Time) *Service {
	svc := NewService(repo, nopLogger{})
	svc.timeProvider = fixedTime{now: now}
	return svc
}

// afterSlot - момент после окончания слота 10:00-10:30
var afterSlot = time.Date(2025, 6, 2, 11, 0, 0, 0, time.Local)

func TestService_GetByID_Access(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	resp, err := svc.GetByID(context.Background(), 1, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	_, err = svc.GetByID(context.Background(), 1, operator)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 1, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), 42, owner)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_Transition_Lifecycle(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	// requested -> confirmed
	resp, err := svc.Transition(context.Background(), 1, domain.EventConfirm, operator)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	// confirmed -> completed
	resp, err = svc.Transition(context.Background(), 1, domain.EventComplete, operator)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	// completed терминален
	_, err = svc.Transition(context.Background(), 1, domain.EventConfirm, operator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Transition_OperatorOnly(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	_, err := svc.Transition(context.Background(), 1, domain.EventConfirm, owner)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Transition_CancelEventRejected(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	_, err := svc.Transition(context.Background(), 1, domain.EventCancel, operator)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Transition_CompleteBeforeSlotEnd(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusConfirmed))
	// Слот 10:00-10:30 ещё идёт
	svc := newTestService(repo, time.Date(2025, 6, 2, 10, 15, 0, 0, time.Local))

	_, err := svc.Transition(context.Background(), 1, domain.EventComplete, operator)
	assert.ErrorIs(t, err, ErrTooEarlyToComplete)

	// Статус не изменился
	r, err := svc.GetByID(context.Background(), 1, operator)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), r.Status)
}

func TestService_Transition_CompleteSlotEndingAtMidnight(t *testing.T) {
	// Визит 23:30-24:00: завершение доступно с полуночи следующего дня
	res := testReservation(domain.StatusConfirmed)
	res.StartTime = "23:30"
	repo := newMemRepo(res)

	svc := newTestService(repo, time.Date(2025, 6, 2, 23, 45, 0, 0, time.Local))
	_, err := svc.Transition(context.Background(), 1, domain.EventComplete, operator)
	assert.ErrorIs(t, err, ErrTooEarlyToComplete)

	svc = newTestService(repo, time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local))
	resp, err := svc.Transition(context.Background(), 1, domain.EventComplete, operator)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
}

func TestService_Transition_CompleteFromRequested(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	_, err := svc.Transition(context.Background(), 1, domain.EventComplete, operator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Cancel(t *testing.T) {
	t.Run("owner cancels requested", func(t *testing.T) {
		repo := newMemRepo(testReservation(domain.StatusRequested))
		svc := newTestService(repo, afterSlot)

		err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{Reason: "не смогу прийти"}, owner)
		require.NoError(t, err)

		r, err := svc.GetByID(context.Background(), 1, owner)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), r.Status)
		require.NotNil(t, r.CancellationReason)
		assert.Equal(t, "не смогу прийти", *r.CancellationReason)
		assert.NotNil(t, r.CancelledAt)
	})

	t.Run("operator cancels confirmed", func(t *testing.T) {
		repo := newMemRepo(testReservation(domain.StatusConfirmed))
		svc := newTestService(repo, afterSlot)

		err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{Reason: "мастер заболел"}, operator)
		assert.NoError(t, err)
	})

	t.Run("cancel of cancelled is a distinct no-op signal", func(t *testing.T) {
		reserved := testReservation(domain.StatusCancelled)
		reason := "первоначальная причина"
		reserved.CancellationReason = &reason
		repo := newMemRepo(reserved)
		svc := newTestService(repo, afterSlot)

		err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{Reason: "другая причина"}, owner)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)

		// Запись не перезаписана повторной отменой
		r, getErr := svc.GetByID(context.Background(), 1, owner)
		require.NoError(t, getErr)
		require.NotNil(t, r.CancellationReason)
		assert.Equal(t, "первоначальная причина", *r.CancellationReason)
	})

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		repo := newMemRepo(testReservation(domain.StatusCompleted))
		svc := newTestService(repo, afterSlot)

		err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{}, owner)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		repo := newMemRepo(testReservation(domain.StatusRequested))
		svc := newTestService(repo, afterSlot)

		err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{}, stranger)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_GetUserReservations(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	resp, err := svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{UserID: 100}, owner)
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)

	// Чужая история недоступна
	_, err = svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{UserID: 100}, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Некорректный статус в фильтре
	bad := "unknown"
	_, err = svc.GetUserReservations(context.Background(), &models.GetUserReservationsRequest{UserID: 100, Status: &bad}, owner)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetSalonReservations(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusRequested))
	svc := newTestService(repo, afterSlot)

	resp, err := svc.GetSalonReservations(context.Background(), &models.GetSalonReservationsRequest{SalonID: 1}, operator)
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)

	_, err = svc.GetSalonReservations(context.Background(), &models.GetSalonReservationsRequest{SalonID: 1}, owner)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_RepoUnavailable(t *testing.T) {
	repo := newMemRepo()
	repo.failWith = reservationRepo.ErrUnavailable
	svc := newTestService(repo, afterSlot)

	_, err := svc.GetByID(context.Background(), 1, owner)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_Delete(t *testing.T) {
	repo := newMemRepo(testReservation(domain.StatusCancelled))
	svc := newTestService(repo, afterSlot)

	// Удаление доступно только оператору
	err := svc.Delete(context.Background(), 1, owner)
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.Delete(context.Background(), 1, operator)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 1, operator)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
