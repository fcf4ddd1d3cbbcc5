package create_reservation

import (
	"time"

	"github.com/salonbook/booking-service/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64            // ID пользователя (владелец бронирования)
	SalonID   int64            // ID салона
	MenuID    int64            // ID позиции меню
	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время начала слота (например, "10:00")
	Notes     *string          // Пожелания клиента (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64            // ID созданного бронирования
	UserID          int64            // ID пользователя
	SalonID         int64            // ID салона
	MenuID          int64            // ID позиции меню
	Date            time.Time        // Дата бронирования
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность визита в минутах
	Status          string           // Статус бронирования

	// Денормализованные данные позиции меню
	MenuName  string  // Название позиции
	MenuPrice float64 // Цена на момент бронирования
	Notes     *string // Пожелания клиента

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
