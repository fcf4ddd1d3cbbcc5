package domain

import "github.com/salonbook/booking-service/pkg/types"

// AvailableSlot represents a time slot a menu item can be booked at
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
}
