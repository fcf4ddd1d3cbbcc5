package domain

// Default booking policy values
const (
	DefaultSlotGranularityMinutes = 30
	DefaultAdvanceBookingDays     = 0  // 0 = unlimited
	DefaultMinNoticeMinutes       = 60 // 1 hour
)

// Business validation constants
const (
	MinSlotGranularityMinutes = 5
	MaxSlotGranularityMinutes = 240 // 4 hours
	MinAdvanceBookingDays     = 0
	MaxAdvanceBookingDays     = 365 // 1 year
	MinNoticeMinutesLow       = 0
	MinNoticeMinutesHigh      = 10080 // 1 week
	MaxNotesLength            = 500
	MaxCancelReasonLength     = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
