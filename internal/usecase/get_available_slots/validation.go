package get_available_slots

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonID must be positive", ErrInvalidInput)
	}

	if req.MenuID <= 0 {
		return fmt.Errorf("%w: menuID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateAdvanceLimit проверяет, что дата не превышает ограничение
// advanceBookingDays. Нулевой лимит означает отсутствие ограничения.
func validateAdvanceLimit(requestDate time.Time, now time.Time, advanceBookingDays int) error {
	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	requestDateOnly := time.Date(requestDate.Year(), requestDate.Month(), requestDate.Day(), 0, 0, 0, 0, requestDate.Location())

	if requestDateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}
