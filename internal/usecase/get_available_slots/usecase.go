package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonbook/booking-service/internal/domain"
	policyStorage "github.com/salonbook/booking-service/internal/infra/storage/policy"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
)

// UseCase use case для получения доступных слотов для бронирования.
// Сетка кандидатов строится из часов работы салона и длительности выбранной
// позиции меню, затем из неё вычитаются занятые активными бронированиями
// слоты.
type UseCase struct {
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	salonClient     SalonServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	salonClient SalonServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		salonClient:     salonClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Прошедшая дата и закрытый день дают пустой список, не ошибку.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, menu=%d, date=%s",
		req.SalonID, req.MenuID, req.Date.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	menuItem, err := uc.salonClient.GetMenuItem(ctx, req.SalonID, req.MenuID)
	if err != nil {
		if errors.Is(err, salonservice.ErrMenuItemNotFound) {
			uc.logger.Warn("GetAvailableSlots: menu item id=%d not found", req.MenuID)
			return nil, ErrMenuItemNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get menu item id=%d: %v", req.MenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu item: %v", ErrInternal, err)
	}

	if menuItem.SalonID != req.SalonID {
		uc.logger.Warn("GetAvailableSlots: menu item id=%d belongs to salon=%d, not salon=%d",
			req.MenuID, menuItem.SalonID, req.SalonID)
		return nil, ErrMenuItemForeign
	}

	bookingPolicy, err := uc.getPolicy(ctx, req.SalonID)
	if err != nil {
		return nil, err
	}

	if err := validateAdvanceLimit(req.Date, now, bookingPolicy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	emptyResponse := &Response{
		Date:            req.Date,
		SalonID:         req.SalonID,
		MenuID:          req.MenuID,
		DurationMinutes: menuItem.DurationMinutes,
		Slots:           []Slot{},
	}

	if isDateInPast(req.Date, now) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return emptyResponse, nil
	}

	schedule := salon.ScheduleFor(req.Date.Weekday())
	if !schedule.IsOpen {
		uc.logger.Info("GetAvailableSlots: salon=%d is closed on %s", req.SalonID, req.Date.Format(domain.DateFormat))
		return emptyResponse, nil
	}

	candidates, err := generateCandidateSlots(schedule, bookingPolicy.SlotGranularityMinutes, menuItem.DurationMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate candidate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate candidate slots: %v", ErrInternal, err)
	}

	candidates, err = filterByNotice(candidates, req.Date, now, bookingPolicy.MinNoticeMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to apply notice filter: %v", err)
		return nil, fmt.Errorf("%w: failed to apply notice filter: %v", ErrInternal, err)
	}

	filter := domain.SalonReservationsFilter{
		SalonID:         req.SalonID,
		StartDate:       &req.Date,
		EndDate:         &req.Date,
		IncludeInactive: false, // Занятость определяют только активные бронирования
	}

	reservations, err := uc.reservationRepo.GetBySalonWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	available := subtractOccupied(candidates, menuItem.DurationMinutes, reservations)

	slots := make([]Slot, len(available))
	for i, start := range available {
		slots[i] = Slot{
			StartTime:       start,
			DurationMinutes: menuItem.DurationMinutes,
		}
	}

	uc.logger.Info("GetAvailableSlots: %d of %d slots available for salon=%d, date=%s",
		len(slots), len(candidates), req.SalonID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:            req.Date,
		SalonID:         req.SalonID,
		MenuID:          req.MenuID,
		DurationMinutes: menuItem.DurationMinutes,
		Slots:           slots,
	}, nil
}

// getPolicy загружает политику салона, подставляя дефолты при её отсутствии
func (uc *UseCase) getPolicy(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	p, err := uc.policyRepo.GetBySalonID(ctx, salonID)
	if err != nil {
		if errors.Is(err, policyStorage.ErrPolicyNotFound) {
			uc.logger.Info("GetAvailableSlots: using default policy for salon=%d", salonID)
			return domain.DefaultBookingPolicy(salonID), nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get policy for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}
	return p, nil
}
