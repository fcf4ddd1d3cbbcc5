package domain

import "time"

// BookingPolicy represents the per-salon booking rules.
// A salon without a stored policy gets DefaultBookingPolicy.
type BookingPolicy struct {
	ID                     int64
	SalonID                int64
	SlotGranularityMinutes int // шаг сетки слотов
	AdvanceBookingDays     int // 0 = unlimited
	MinNoticeMinutes       int // минимальное время до начала слота при бронировании на сегодня
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p *BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// DefaultBookingPolicy возвращает политику по умолчанию для салона без настроек
func DefaultBookingPolicy(salonID int64) *BookingPolicy {
	return &BookingPolicy{
		SalonID:                salonID,
		SlotGranularityMinutes: DefaultSlotGranularityMinutes,
		AdvanceBookingDays:     DefaultAdvanceBookingDays,
		MinNoticeMinutes:       DefaultMinNoticeMinutes,
	}
}
