package create_reservation

import (
	"fmt"
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonID must be positive", ErrInvalidInput)
	}

	if req.MenuID <= 0 {
		return fmt.Errorf("%w: menuID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(reservationDate time.Time, now time.Time, advanceBookingDays int) error {
	// На создание прошедшая дата - ошибка, в отличие от чтения слотов
	if isDateInPast(reservationDate, now) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	dateOnly := time.Date(reservationDate.Year(), reservationDate.Month(), reservationDate.Day(), 0, 0, 0, 0, reservationDate.Location())

	if dateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateSlotWithinSchedule проверяет, что время начала лежит на сетке слотов
// (кратно granularity от времени открытия) и весь визит умещается в рабочие
// часы (start + duration <= close).
func validateSlotWithinSchedule(
	startTime types.TimeString,
	durationMinutes int,
	granularityMinutes int,
	schedule salonservice.DaySchedule,
) error {
	if !schedule.IsOpen || schedule.OpenTime == nil || schedule.CloseTime == nil {
		return ErrSalonClosed
	}

	openTime, err := types.NewTimeStringFromString(*schedule.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: invalid open time: %v", ErrInternal, err)
	}

	closeTime, err := types.NewTimeStringFromString(*schedule.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: invalid close time: %v", ErrInternal, err)
	}

	if startTime.IsBefore(openTime) {
		return fmt.Errorf("%w: slot starts before opening", ErrInvalidTimeSlot)
	}

	startMinutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	openMinutes, err := openTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid open time: %v", ErrInternal, err)
	}

	offset := startMinutes - openMinutes
	if offset%granularityMinutes != 0 {
		return fmt.Errorf("%w: slot is not aligned to %d minute grid", ErrInvalidTimeSlot, granularityMinutes)
	}

	visitEnd, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: slot does not fit the day", ErrInvalidTimeSlot)
	}

	if visitEnd.IsAfter(closeTime) {
		return fmt.Errorf("%w: visit ends after closing", ErrInvalidTimeSlot)
	}

	return nil
}

// validateNotice проверяет, что бронирование не нарушает minNoticeMinutes.
// Проверка применяется только к бронированиям на сегодня.
func validateNotice(
	reservationDate time.Time,
	startTime types.TimeString,
	now time.Time,
	minNoticeMinutes int,
) error {
	if !isSameDay(reservationDate, now) {
		return nil
	}

	minAllowedTime, err := types.NewTimeString(now).AddMinutes(minNoticeMinutes)
	if err != nil {
		return fmt.Errorf("%w: failed to calculate min allowed time: %v", ErrInternal, err)
	}

	if startTime.IsBefore(minAllowedTime) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minNoticeMinutes)
	}

	return nil
}

// hasOverlap проверяет пересечение запрошенного визита хотя бы с одним
// активным бронированием. Граничное касание пересечением не считается.
func hasOverlap(
	startTime types.TimeString,
	durationMinutes int,
	reservations []*domain.Reservation,
) (bool, error) {
	visitEnd, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return false, err
	}

	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}

		resEnd, err := r.EndTime()
		if err != nil {
			continue
		}

		if r.StartTime.IsBefore(visitEnd) && resEnd.IsAfter(startTime) {
			return true, nil
		}
	}

	return false, nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
