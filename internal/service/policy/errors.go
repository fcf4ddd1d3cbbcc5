package policy

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salon not found")

	// ErrAccessDenied возвращается, когда у принципала нет прав на операцию
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
