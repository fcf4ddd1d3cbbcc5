package salonservice

import "time"

// Salon модель салона из SalonService
type Salon struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	OpeningHours WeekSchedule `json:"openingHours"`
}

// WeekSchedule расписание работы салона по дням недели
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// DaySchedule расписание работы на один день недели.
// Отсутствующие часы открытия/закрытия означают выходной.
type DaySchedule struct {
	IsOpen    bool    `json:"isOpen"`
	OpenTime  *string `json:"open,omitempty"`  // "09:00"
	CloseTime *string `json:"close,omitempty"` // "18:00"
}

// ScheduleFor возвращает расписание салона на указанный день недели
func (s *Salon) ScheduleFor(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return s.OpeningHours.Monday
	case time.Tuesday:
		return s.OpeningHours.Tuesday
	case time.Wednesday:
		return s.OpeningHours.Wednesday
	case time.Thursday:
		return s.OpeningHours.Thursday
	case time.Friday:
		return s.OpeningHours.Friday
	case time.Saturday:
		return s.OpeningHours.Saturday
	case time.Sunday:
		return s.OpeningHours.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// MenuItem модель позиции меню из SalonService
type MenuItem struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration"`
	Price           float64 `json:"price"`
}

// ErrorResponse модель ошибки от SalonService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
