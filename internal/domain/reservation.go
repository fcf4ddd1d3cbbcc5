package domain

import (
	"time"

	"github.com/salonbook/booking-service/pkg/types"
)

// Reservation represents a booked time slot at a salon
type Reservation struct {
	ID              int64
	SalonID         int64
	UserID          int64
	Date            time.Time // Дата бронирования (без времени)
	StartTime       types.TimeString
	DurationMinutes int
	Status          ReservationStatus

	// Denormalized menu snapshot: menu items are mutable and deletable
	// independently of reservations, so the reservation keeps its own copy
	MenuID    int64
	MenuName  string
	MenuPrice float64

	Notes *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation occupies its slot.
// Only cancellation releases a slot; a completed visit keeps it occupied.
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

// CanBeCancelled returns true if the reservation can still be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status.CanTransitionTo(StatusCancelled)
}

// EndTime возвращает время окончания слота (start + duration)
func (r *Reservation) EndTime() (types.TimeString, error) {
	return r.StartTime.AddMinutes(r.DurationMinutes)
}

// SalonReservationsFilter фильтр для получения бронирований салона
type SalonReservationsFilter struct {
	SalonID         int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые бронирования
}
