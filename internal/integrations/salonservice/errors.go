package salonservice

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salon not found")

	// ErrMenuItemNotFound возвращается, когда позиция меню не найдена
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("salonservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("salonservice client: invalid response")
)
