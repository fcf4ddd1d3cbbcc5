package get_available_slots

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salon not found")

	// ErrMenuItemNotFound возвращается, когда позиция меню не найдена
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrMenuItemForeign возвращается, когда позиция меню принадлежит
	// другому салону
	ErrMenuItemForeign = errors.New("menu item does not belong to this salon")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение
	// advanceBookingDays политики салона
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
