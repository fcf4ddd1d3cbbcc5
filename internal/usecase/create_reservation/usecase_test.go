package create_reservation

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/booking-service/internal/domain"
	policyStorage "github.com/salonbook/booking-service/internal/infra/storage/policy"
	reservationStorage "github.com/salonbook/booking-service/internal/infra/storage/reservation"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/pkg/dbmetrics"
	"github.com/salonbook/booking-service/pkg/ptr"
	"github.com/salonbook/booking-service/pkg/txmanager"
	"github.com/salonbook/booking-service/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// memReservationRepo in-memory репозиторий, имитирующий хранение бронирований
type memReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	reservations []*domain.Reservation
}

func (m *memReservationRepo) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	created := *r
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.reservations = append(m.reservations, &created)
	return &created, nil
}

func (m *memReservationRepo) GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Reservation
	for _, r := range m.reservations {
		if r.SalonID != filter.SalonID {
			continue
		}
		if filter.StartDate != nil && r.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && r.Date.After(*filter.EndDate) {
			continue
		}
		if !filter.IncludeInactive && !r.IsActive() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
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

// serialTxManager имитирует сериализуемые транзакции глобальной блокировкой:
// конкурирующие транзакции выполняются строго по очереди
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []*domain.Reservation
}

func (p *recordingPublisher) PublishReservationCreated(ctx context.Context, r *domain.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, r)
	return nil
}

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

var (
	monday  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2025, 5, 26, 12, 0, 0, 0, time.UTC)
)

type testStack struct {
	uc        *UseCase
	repo      *memReservationRepo
	publisher *recordingPublisher
}

func newTestStack() *testStack {
	repo := &memReservationRepo{}
	publisher := &recordingPublisher{}
	uc := NewUseCase(
		repo,
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
		publisher,
		&serialTxManager{},
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}
	return &testStack{uc: uc, repo: repo, publisher: publisher}
}

func validRequest() *Request {
	return &Request{
		UserID:    100,
		SalonID:   1,
		MenuID:    10,
		Date:      monday,
		StartTime: "10:00",
	}
}

func TestUseCase_Execute_Success(t *testing.T) {
	stack := newTestStack()

	resp, err := stack.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusRequested), resp.Status)
	assert.Equal(t, "Haircut", resp.MenuName)
	assert.Equal(t, 1500.0, resp.MenuPrice)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)

	require.Len(t, stack.publisher.published, 1)
	assert.Equal(t, resp.ID, stack.publisher.published[0].ID)
}

func TestUseCase_Execute_SlotTaken(t *testing.T) {
	stack := newTestStack()

	_, err := stack.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.UserID = 200
	_, err = stack.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestUseCase_Execute_OverlappingVisitRejected(t *testing.T) {
	stack := newTestStack()

	_, err := stack.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Визит 10:00-10:30 занят, старт 10:30 допустим (граница не пересечение)
	req := validRequest()
	req.UserID = 200
	req.StartTime = "10:30"
	_, err = stack.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestUseCase_Execute_ConcurrentSameSlot(t *testing.T) {
	stack := newTestStack()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest()
			req.UserID = int64(100 + i)
			_, errs[i] = stack.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent request should win the slot")

	reservations, err := stack.repo.GetBySalonWithFilter(context.Background(), domain.SalonReservationsFilter{SalonID: 1})
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
}

func TestUseCase_Execute_CancelledSlotReusable(t *testing.T) {
	stack := newTestStack()

	resp, err := stack.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Отмена освобождает слот для нового бронирования
	stack.repo.mu.Lock()
	stack.repo.reservations[0].Status = domain.StatusCancelled
	stack.repo.mu.Unlock()

	req := validRequest()
	req.UserID = 200
	resp2, err := stack.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, resp.ID, resp2.ID)
}

func TestUseCase_Execute_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"misaligned start time", func(r *Request) { r.StartTime = "10:15" }, ErrInvalidTimeSlot},
		{"before opening", func(r *Request) { r.StartTime = "08:30" }, ErrInvalidTimeSlot},
		{"visit ends after closing", func(r *Request) { r.StartTime = "17:45" }, ErrInvalidTimeSlot},
		{"closed day", func(r *Request) { r.Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }, ErrSalonClosed},
		{"past date", func(r *Request) { r.Date = time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC) }, ErrInvalidDate},
		{"missing start time", func(r *Request) { r.StartTime = "" }, ErrInvalidInput},
		{"non-positive salon", func(r *Request) { r.SalonID = 0 }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := newTestStack()
			req := validRequest()
			tt.mutate(req)

			_, err := stack.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUseCase_Execute_MinNoticeSameDay(t *testing.T) {
	stack := newTestStack()
	// Сейчас 12:00 того же дня, minNotice 60: старт 12:30 слишком рано
	stack.uc.timeProvider = fixedTime{now: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)}

	req := validRequest()
	req.StartTime = "12:30"
	_, err := stack.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTooLateToBook)

	req.StartTime = "13:30"
	_, err = stack.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestUseCase_Execute_MenuItemForeign(t *testing.T) {
	foreign := testMenuItem()
	foreign.SalonID = 2

	uc := NewUseCase(
		&memReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: foreign},
		nil,
		&serialTxManager{},
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrMenuItemForeign)
}

// noopTx транзакция-заглушка для настоящего txmanager; запросы выполняют
// in-memory фейки, от транзакции нужны только Commit и Rollback
type noopTx struct{}

func (noopTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (noopTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (noopTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type noopBeginner struct{}

func (noopBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return noopTx{}, nil
}

// flakyReservationRepo проигрывает сериализацию на первом чтении дня,
// дальше ведёт себя как обычный in-memory репозиторий
type flakyReservationRepo struct {
	memReservationRepo
	filterCalls int
}

func (f *flakyReservationRepo) GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error) {
	f.filterCalls++
	if f.filterCalls == 1 {
		serErr := &pq.Error{Code: "40001", Message: "could not serialize access"}
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - execute query: %w", reservationStorage.ErrExecQuery, serErr)
	}
	return f.memReservationRepo.GetBySalonWithFilter(ctx, filter)
}

func TestUseCase_Execute_RetriesAfterSerializationFailure(t *testing.T) {
	// Проигравшая сериализацию транзакция повторяется, а не превращается в 500
	repo := &flakyReservationRepo{}
	uc := NewUseCase(
		repo,
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salon: testSalon(), menuItem: testMenuItem()},
		nil,
		txmanager.NewTransactionManager(noopBeginner{}),
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.filterCalls)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusRequested), resp.Status)
}

func TestUseCase_Execute_SalonNotFound(t *testing.T) {
	uc := NewUseCase(
		&memReservationRepo{},
		&fakePolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&fakeSalonClient{salonErr: salonservice.ErrSalonNotFound},
		nil,
		&serialTxManager{},
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSalonNotFound)
}
