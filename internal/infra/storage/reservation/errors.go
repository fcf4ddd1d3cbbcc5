package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrSlotConflict возвращается, когда слот уже занят активным бронированием.
	// Источник - частичный уникальный индекс reservations_active_slot_key.
	ErrSlotConflict = errors.New("reservation.repository: slot already taken")

	// ErrTransitionConflict возвращается, когда compare-and-swap статуса не
	// нашел строку в ожидаемом исходном статусе
	ErrTransitionConflict = errors.New("reservation.repository: reservation is not in expected status")

	// ErrUnavailable возвращается при истечении таймаута запроса к хранилищу.
	// Вызывающий может безопасно повторить операцию с backoff.
	ErrUnavailable = errors.New("reservation.repository: storage unavailable, retry later")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
