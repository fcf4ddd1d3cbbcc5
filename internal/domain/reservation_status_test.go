package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{"requested to confirmed", StatusRequested, StatusConfirmed, true},
		{"requested to cancelled", StatusRequested, StatusCancelled, true},
		{"requested to completed", StatusRequested, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to requested", StatusConfirmed, StatusRequested, false},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"completed to confirmed", StatusCompleted, StatusConfirmed, false},
		{"cancelled to confirmed", StatusCancelled, StatusConfirmed, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservationStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusRequested.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current ReservationStatus
		event   ReservationEvent
		want    ReservationStatus
		wantErr bool
	}{
		{"confirm requested", StatusRequested, EventConfirm, StatusConfirmed, false},
		{"cancel requested", StatusRequested, EventCancel, StatusCancelled, false},
		{"complete requested", StatusRequested, EventComplete, "", true},
		{"complete confirmed", StatusConfirmed, EventComplete, StatusCompleted, false},
		{"cancel confirmed", StatusConfirmed, EventCancel, StatusCancelled, false},
		{"confirm confirmed", StatusConfirmed, EventConfirm, "", true},
		{"confirm completed", StatusCompleted, EventConfirm, "", true},
		{"cancel completed", StatusCompleted, EventCancel, "", true},
		{"confirm cancelled", StatusCancelled, EventConfirm, "", true},
		{"cancel cancelled", StatusCancelled, EventCancel, "", true},
		{"unknown event", StatusRequested, ReservationEvent("reopen"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.current, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReservationStatus(t *testing.T) {
	status, err := ParseReservationStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseReservationStatus("unknown")
	assert.Error(t, err)
}

func TestParseReservationEvent(t *testing.T) {
	event, err := ParseReservationEvent("complete")
	require.NoError(t, err)
	assert.Equal(t, EventComplete, event)

	_, err = ParseReservationEvent("unknown")
	assert.Error(t, err)
}
