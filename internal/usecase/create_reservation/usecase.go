package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonbook/booking-service/internal/domain"
	policyStorage "github.com/salonbook/booking-service/internal/infra/storage/policy"
	reservationStorage "github.com/salonbook/booking-service/internal/infra/storage/reservation"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	salonClient     SalonServiceClient
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// publisher может быть nil, тогда события не публикуются.
func NewUseCase(
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	salonClient SalonServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		salonClient:     salonClient,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка занятости и вставка идут в сериализуемой транзакции: при гонке за
// один слот ровно одно бронирование создается, остальные получают
// ErrSlotNotAvailable. Частичный уникальный индекс в БД страхует тот же
// инвариант на случай обхода транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, salon=%d, menu=%d, date=%s, time=%s",
		req.UserID, req.SalonID, req.MenuID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем салон
	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			uc.logger.Warn("CreateReservation: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateReservation: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	// 4. Получаем позицию меню
	menuItem, err := uc.salonClient.GetMenuItem(ctx, req.SalonID, req.MenuID)
	if err != nil {
		if errors.Is(err, salonservice.ErrMenuItemNotFound) {
			uc.logger.Warn("CreateReservation: menu item id=%d not found", req.MenuID)
			return nil, ErrMenuItemNotFound
		}
		uc.logger.Error("CreateReservation: failed to get menu item id=%d: %v", req.MenuID, err)
		return nil, fmt.Errorf("%w: failed to get menu item: %v", ErrInternal, err)
	}

	// 5. Проверяем, что позиция принадлежит этому салону
	if menuItem.SalonID != req.SalonID {
		uc.logger.Warn("CreateReservation: menu item id=%d belongs to salon=%d, not salon=%d",
			req.MenuID, menuItem.SalonID, req.SalonID)
		return nil, ErrMenuItemForeign
	}

	// Переменная для хранения результата
	var result *domain.Reservation

	// 6. Выполняем операции с БД в сериализуемой транзакции.
	// Ошибки БД внутри заворачиваются через %w: txManager повторяет
	// транзакцию, только если видит serialization failure в цепочке.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Получаем политику бронирования салона
		bookingPolicy, err := uc.policyRepo.GetBySalonID(txCtx, req.SalonID)
		if err != nil {
			if !errors.Is(err, policyStorage.ErrPolicyNotFound) {
				uc.logger.Error("CreateReservation: failed to get policy: %v", err)
				return fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
			}
			bookingPolicy = domain.DefaultBookingPolicy(req.SalonID)
			uc.logger.Info("CreateReservation: using default policy for salon=%d", req.SalonID)
		}

		// 6.2. Валидация даты с учетом политики
		if err := validateDate(req.Date, now, bookingPolicy.AdvanceBookingDays); err != nil {
			uc.logger.Warn("CreateReservation: date validation failed: %v", err)
			return err
		}

		// 6.3. Проверяем рабочие часы и положение слота на сетке
		schedule := salon.ScheduleFor(req.Date.Weekday())
		if err := validateSlotWithinSchedule(req.StartTime, menuItem.DurationMinutes, bookingPolicy.SlotGranularityMinutes, schedule); err != nil {
			uc.logger.Warn("CreateReservation: slot validation failed: %v", err)
			return err
		}

		// 6.4. Проверяем minNoticeMinutes для бронирований на сегодня
		if err := validateNotice(req.Date, req.StartTime, now, bookingPolicy.MinNoticeMinutes); err != nil {
			uc.logger.Warn("CreateReservation: notice validation failed: %v", err)
			return err
		}

		// 6.5. Получаем активные бронирования на эту дату с блокировкой (FOR UPDATE)
		filter := domain.SalonReservationsFilter{
			SalonID:         req.SalonID,
			StartDate:       &req.Date,
			EndDate:         &req.Date,
			IncludeInactive: false,
		}

		reservations, err := uc.reservationRepo.GetBySalonWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get reservations: %v", err)
			return fmt.Errorf("%w: failed to get reservations: %w", ErrInternal, err)
		}

		// 6.6. Проверяем, что визит не пересекается с существующими
		overlaps, err := hasOverlap(req.StartTime, menuItem.DurationMinutes, reservations)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to check overlap: %v", err)
			return fmt.Errorf("%w: failed to check overlap: %v", ErrInternal, err)
		}

		if overlaps {
			uc.logger.Warn("CreateReservation: slot %s on %s is taken",
				req.StartTime, req.Date.Format(domain.DateFormat))
			return ErrSlotNotAvailable
		}

		// 6.7. Создаем бронирование с денормализацией данных позиции меню
		reservation := &domain.Reservation{
			SalonID:         req.SalonID,
			UserID:          req.UserID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: menuItem.DurationMinutes,
			Status:          domain.StatusRequested,
			MenuID:          req.MenuID,
			MenuName:        menuItem.Name,
			MenuPrice:       menuItem.Price,
			Notes:           req.Notes,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			if errors.Is(err, reservationStorage.ErrSlotConflict) {
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, reservationStorage.ErrUnavailable) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d", result.ID)

	// 7. Публикуем событие после коммита. Отказ брокера не откатывает бронирование.
	if uc.publisher != nil {
		if err := uc.publisher.PublishReservationCreated(ctx, result); err != nil {
			uc.logger.Error("CreateReservation: failed to publish event for id=%d: %v", result.ID, err)
		}
	}

	return &Response{
		ID:              result.ID,
		UserID:          result.UserID,
		SalonID:         result.SalonID,
		MenuID:          result.MenuID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		MenuName:        result.MenuName,
		MenuPrice:       result.MenuPrice,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}
