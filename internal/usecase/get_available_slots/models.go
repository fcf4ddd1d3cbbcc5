package get_available_slots

import (
	"time"

	"github.com/salonbook/booking-service/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	SalonID int64     // ID салона
	MenuID  int64     // ID позиции меню (определяет длительность визита)
	Date    time.Time // Дата, на которую запрашиваются слоты (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	SalonID         int64     // ID салона
	MenuID          int64     // ID позиции меню
	DurationMinutes int       // Длительность визита для выбранной позиции
	Slots           []Slot    // Доступные слоты по возрастанию времени начала
}

// Slot модель доступного временного слота
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	DurationMinutes int              // Длительность визита в минутах
}
