package create_reservation

import (
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	createReservation "github.com/salonbook/booking-service/internal/usecase/create_reservation"
	"github.com/salonbook/booking-service/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	SalonID   int64   `json:"salonId"`
	MenuID    int64   `json:"menuId"`
	Date      string  `json:"date"`      // "2025-10-15"
	StartTime string  `json:"startTime"` // "10:00"
	Notes     *string `json:"notes,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"userId"`
	SalonID         int64   `json:"salonId"`
	MenuID          int64   `json:"menuId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	MenuName        string  `json:"menuName"`
	MenuPrice       float64 `json:"menuPrice"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// userID приходит из контекста аутентификации, не из тела.
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		UserID:    userID,
		SalonID:   r.SalonID,
		MenuID:    r.MenuID,
		Date:      date,
		StartTime: startTime,
		Notes:     r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:              resp.ID,
		UserID:          resp.UserID,
		SalonID:         resp.SalonID,
		MenuID:          resp.MenuID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		MenuName:        resp.MenuName,
		MenuPrice:       resp.MenuPrice,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
