package create_reservation

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("create_reservation: salon not found")

	// ErrMenuItemNotFound возвращается, когда позиция меню не найдена
	ErrMenuItemNotFound = errors.New("create_reservation: menu item not found")

	// ErrMenuItemForeign возвращается, когда позиция меню принадлежит другому салону
	ErrMenuItemForeign = errors.New("create_reservation: menu item belongs to another salon")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_reservation: invalid reservation date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_reservation: date is too far in the future")

	// ErrSalonClosed возвращается, когда салон закрыт в указанную дату
	ErrSalonClosed = errors.New("create_reservation: salon is closed on this date")

	// ErrSlotNotAvailable возвращается, когда выбранный слот уже занят
	ErrSlotNotAvailable = errors.New("create_reservation: slot is not available")

	// ErrInvalidTimeSlot возвращается, когда время слота некорректно (не кратно
	// шагу сетки или визит не умещается в рабочие часы)
	ErrInvalidTimeSlot = errors.New("create_reservation: invalid time slot")

	// ErrTooLateToBook возвращается, когда бронирование нарушает minNoticeMinutes
	ErrTooLateToBook = errors.New("create_reservation: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrUnavailable возвращается, когда хранилище временно недоступно
	ErrUnavailable = errors.New("create_reservation: storage unavailable, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
