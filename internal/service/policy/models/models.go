package models

import (
	"time"

	"github.com/salonbook/booking-service/internal/domain"
)

// UpdatePolicyRequest запрос на обновление политики бронирования салона
type UpdatePolicyRequest struct {
	SlotGranularityMinutes int `json:"slotGranularityMinutes"`
	AdvanceBookingDays     int `json:"advanceBookingDays"`
	MinNoticeMinutes       int `json:"minNoticeMinutes"`
}

// ToDomain конвертирует request в domain модель
func (r *UpdatePolicyRequest) ToDomain(salonID int64) *domain.BookingPolicy {
	return &domain.BookingPolicy{
		SalonID:                salonID,
		SlotGranularityMinutes: r.SlotGranularityMinutes,
		AdvanceBookingDays:     r.AdvanceBookingDays,
		MinNoticeMinutes:       r.MinNoticeMinutes,
	}
}

// PolicyResponse ответ с политикой бронирования салона
type PolicyResponse struct {
	SalonID                int64  `json:"salonId"`
	SlotGranularityMinutes int    `json:"slotGranularityMinutes"`
	AdvanceBookingDays     int    `json:"advanceBookingDays"`
	MinNoticeMinutes       int    `json:"minNoticeMinutes"`
	IsDefault              bool   `json:"isDefault"` // true, если салон не сохранял собственную политику
	UpdatedAt              string `json:"updatedAt,omitempty"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.BookingPolicy, isDefault bool) *PolicyResponse {
	resp := &PolicyResponse{
		SalonID:                p.SalonID,
		SlotGranularityMinutes: p.SlotGranularityMinutes,
		AdvanceBookingDays:     p.AdvanceBookingDays,
		MinNoticeMinutes:       p.MinNoticeMinutes,
		IsDefault:              isDefault,
	}

	if !isDefault && !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}

	return resp
}
