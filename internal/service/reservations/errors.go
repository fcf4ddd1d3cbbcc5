package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAccessDenied возвращается, когда у принципала нет прав на операцию
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается, когда событие недопустимо из
	// текущего статуса бронирования
	ErrInvalidTransition = errors.New("invalid reservation transition")

	// ErrAlreadyCancelled возвращается при отмене уже отменённого
	// бронирования. Вызывающие трактуют это как no-op успех.
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")

	// ErrTooEarlyToComplete возвращается при попытке завершить визит
	// до окончания слота
	ErrTooEarlyToComplete = errors.New("reservation slot has not elapsed yet")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnavailable возвращается при недоступности хранилища, операцию
	// можно повторить с backoff
	ErrUnavailable = errors.New("storage temporarily unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
