package models

import (
	"time"

	"github.com/salonbook/booking-service/internal/domain"
)

// Request модели

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID int64
	Status *string
}

// GetSalonReservationsRequest запрос на получение бронирований салона
type GetSalonReservationsRequest struct {
	SalonID         int64
	StartDate       *time.Time // Начало периода (опционально)
	EndDate         *time.Time // Конец периода (опционально)
	Status          *string    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetSalonReservationsRequest) ToDomainFilter() (domain.SalonReservationsFilter, error) {
	filter := domain.SalonReservationsFilter{
		SalonID:         r.SalonID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := domain.ParseReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	UserID          int64   `json:"userId"`
	Date            string  `json:"date"`      // "2025-06-02"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	MenuID          int64   `json:"menuId"`
	MenuName        string  `json:"menuName"`
	MenuPrice       float64 `json:"menuPrice"`
	Notes           *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		SalonID:            r.SalonID,
		UserID:             r.UserID,
		Date:               r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		DurationMinutes:    r.DurationMinutes,
		Status:             string(r.Status),
		MenuID:             r.MenuID,
		MenuName:           r.MenuName,
		MenuPrice:          r.MenuPrice,
		Notes:              r.Notes,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if dto := FromDomainReservation(r); dto != nil {
			resp.Reservations = append(resp.Reservations, *dto)
		}
	}

	return resp
}
