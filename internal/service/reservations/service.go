package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	reservationRepo "github.com/salonbook/booking-service/internal/infra/storage/reservation"
	"github.com/salonbook/booking-service/internal/service/reservations/models"
)

// Service сервис для чтения бронирований и переходов жизненного цикла.
// Каждая смена статуса - именованное событие state machine (domain),
// прямых присваиваний статуса здесь нет.
type Service struct {
	reservationRepo ReservationRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID.
// Доступно владельцу бронирования и оператору салона.
func (s *Service) GetByID(ctx context.Context, id int64, principal domain.Principal) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for principal id=%d role=%s", id, principal.ID, principal.Role)

	reservation, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !principal.Owns(reservation) && !principal.Operates(reservation.SalonID) {
		s.logger.Warn("GetByID: access denied for principal id=%d to reservation id=%d", principal.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(reservation), nil
}

// GetUserReservations получает историю бронирований пользователя.
// Пользователь видит только собственную историю.
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest, principal domain.Principal) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	if !principal.IsUser() || principal.ID != req.UserID {
		s.logger.Warn("GetUserReservations: access denied for principal id=%d role=%s to user=%d",
			principal.ID, principal.Role, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := domain.ParseReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	reservations, err := s.reservationRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		return nil, s.repoError("GetUserReservations", err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetSalonReservations получает бронирования салона с фильтрацией.
// Доступно только оператору салона. Отсутствие бронирований - пустой
// список, не ошибка.
func (s *Service) GetSalonReservations(ctx context.Context, req *models.GetSalonReservationsRequest, principal domain.Principal) (*models.ReservationListResponse, error) {
	s.logger.Info("GetSalonReservations: fetching reservations for salon=%d by principal id=%d", req.SalonID, principal.ID)

	if !principal.Operates(req.SalonID) {
		s.logger.Warn("GetSalonReservations: access denied for principal id=%d role=%s to salon=%d",
			principal.ID, principal.Role, req.SalonID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetSalonReservations: invalid filter for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.GetBySalonWithFilter(ctx, filter)
	if err != nil {
		return nil, s.repoError("GetSalonReservations", err)
	}

	s.logger.Info("GetSalonReservations: fetched %d reservations for salon=%d", len(reservations), req.SalonID)
	return models.FromDomainReservationList(reservations), nil
}

// Transition применяет событие жизненного цикла к бронированию.
// confirm и complete доступны только оператору салона; complete дополнительно
// требует, чтобы время окончания слота уже прошло.
// Для отмены используется Cancel (несёт причину отмены).
func (s *Service) Transition(ctx context.Context, id int64, event domain.ReservationEvent, principal domain.Principal) (*models.ReservationResponse, error) {
	s.logger.Info("Transition: applying event=%s to reservation id=%d by principal id=%d role=%s",
		event, id, principal.ID, principal.Role)

	if event == domain.EventCancel {
		return nil, fmt.Errorf("%w: cancel requires a reason, use Cancel", ErrInvalidInput)
	}

	reservation, err := s.getReservation(ctx, "Transition", id)
	if err != nil {
		return nil, err
	}

	if !principal.Operates(reservation.SalonID) {
		s.logger.Warn("Transition: access denied for principal id=%d to reservation id=%d", principal.ID, id)
		return nil, ErrAccessDenied
	}

	next, err := domain.NextStatus(reservation.Status, event)
	if err != nil {
		s.logger.Warn("Transition: invalid transition for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if event == domain.EventComplete {
		if err := s.checkSlotElapsed(reservation); err != nil {
			s.logger.Warn("Transition: reservation id=%d slot has not elapsed yet", id)
			return nil, err
		}
	}

	if err := s.reservationRepo.TransitionStatus(ctx, id, reservation.Status, next); err != nil {
		if errors.Is(err, reservationRepo.ErrTransitionConflict) {
			// Статус изменился между чтением и CAS-обновлением
			s.logger.Warn("Transition: concurrent status change for reservation id=%d", id)
			return nil, fmt.Errorf("%w: reservation status changed concurrently", ErrInvalidTransition)
		}
		return nil, s.repoError("Transition", err)
	}

	s.logger.Info("Transition: reservation id=%d moved %s -> %s", id, reservation.Status, next)

	reservation.Status = next
	return models.FromDomainReservation(reservation), nil
}

// Cancel отменяет бронирование с указанием причины.
// Владелец отменяет своё бронирование, оператор - любое бронирование салона.
// Отмена уже отменённого возвращает ErrAlreadyCancelled: state machine
// запрещает переход, но вызывающие трактуют его как no-op успех.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelReservationRequest, principal domain.Principal) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by principal id=%d role=%s", id, principal.ID, principal.Role)

	if len(req.Reason) > domain.MaxCancelReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	reservation, err := s.getReservation(ctx, "Cancel", id)
	if err != nil {
		return err
	}

	if !principal.Owns(reservation) && !principal.Operates(reservation.SalonID) {
		s.logger.Warn("Cancel: access denied for principal id=%d to reservation id=%d", principal.ID, id)
		return ErrAccessDenied
	}

	if reservation.Status == domain.StatusCancelled {
		s.logger.Info("Cancel: reservation id=%d is already cancelled", id)
		return ErrAlreadyCancelled
	}

	if _, err := domain.NextStatus(reservation.Status, domain.EventCancel); err != nil {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled from status=%s", id, reservation.Status)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if err := s.reservationRepo.Cancel(ctx, id, reservation.Status, req.Reason); err != nil {
		if errors.Is(err, reservationRepo.ErrTransitionConflict) {
			s.logger.Warn("Cancel: concurrent status change for reservation id=%d", id)
			return fmt.Errorf("%w: reservation status changed concurrently", ErrInvalidTransition)
		}
		return s.repoError("Cancel", err)
	}

	s.logger.Info("Cancel: reservation id=%d cancelled", id)
	return nil
}

// Delete физически удаляет бронирование.
// Deprecated: путь сохранен для старых клиентов, ожидающих физическое
// удаление при отмене. Доступен только оператору салона.
func (s *Service) Delete(ctx context.Context, id int64, principal domain.Principal) error {
	s.logger.Info("Delete: deleting reservation id=%d by principal id=%d role=%s", id, principal.ID, principal.Role)

	reservation, err := s.getReservation(ctx, "Delete", id)
	if err != nil {
		return err
	}

	if !principal.Operates(reservation.SalonID) {
		s.logger.Warn("Delete: access denied for principal id=%d to reservation id=%d", principal.ID, id)
		return ErrAccessDenied
	}

	if err := s.reservationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		return s.repoError("Delete", err)
	}

	s.logger.Info("Delete: reservation id=%d deleted", id)
	return nil
}

// getReservation загружает бронирование, маппя ошибки репозитория
func (s *Service) getReservation(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		return nil, s.repoError(op, err)
	}
	return reservation, nil
}

// checkSlotElapsed проверяет, что слот бронирования уже закончился
func (s *Service) checkSlotElapsed(r *domain.Reservation) error {
	endTime, err := r.EndTime()
	if err != nil {
		return fmt.Errorf("%w: failed to compute slot end: %v", ErrInternal, err)
	}

	endMinutes, err := endTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: failed to compute slot end: %v", ErrInternal, err)
	}

	slotEnd := time.Date(
		r.Date.Year(), r.Date.Month(), r.Date.Day(),
		endMinutes/60, endMinutes%60, 0, 0,
		time.Local,
	)

	if s.timeProvider.Now().Before(slotEnd) {
		return ErrTooEarlyToComplete
	}

	return nil
}

// repoError маппит ошибки репозитория в ошибки сервиса
func (s *Service) repoError(op string, err error) error {
	if errors.Is(err, reservationRepo.ErrUnavailable) {
		s.logger.Error("%s: storage unavailable: %v", op, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
