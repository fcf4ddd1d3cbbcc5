package domain

import (
	"errors"
	"fmt"
)

// ReservationStatus represents the current state of a reservation in its lifecycle.
type ReservationStatus string

const (
	StatusRequested ReservationStatus = "requested"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// ReservationEvent is a named lifecycle transition applied to a reservation.
// Every status mutation goes through an event, never a raw field assignment.
type ReservationEvent string

const (
	EventConfirm  ReservationEvent = "confirm"
	EventComplete ReservationEvent = "complete"
	EventCancel   ReservationEvent = "cancel"
)

// ErrInvalidTransition возвращается, когда событие недопустимо из текущего статуса
var ErrInvalidTransition = errors.New("domain: invalid reservation transition")

// validTransitions defines the state machine for reservation status transitions.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	StatusRequested: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// eventTargets maps each lifecycle event to the status it produces.
var eventTargets = map[ReservationEvent]ReservationStatus{
	EventConfirm:  StatusConfirmed,
	EventComplete: StatusCompleted,
	EventCancel:   StatusCancelled,
}

// IsValid returns true if the status is a recognized reservation status.
func (s ReservationStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s ReservationStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s ReservationStatus) String() string {
	return string(s)
}

// ParseReservationStatus converts a string to a ReservationStatus, returning an error if invalid.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reservation status: %s", s)
	}
	return status, nil
}

// IsValid returns true if the event is a recognized lifecycle event.
func (e ReservationEvent) IsValid() bool {
	_, exists := eventTargets[e]
	return exists
}

// String returns the string representation of the event.
func (e ReservationEvent) String() string {
	return string(e)
}

// ParseReservationEvent converts a string to a ReservationEvent, returning an error if invalid.
func ParseReservationEvent(s string) (ReservationEvent, error) {
	event := ReservationEvent(s)
	if !event.IsValid() {
		return "", fmt.Errorf("invalid reservation event: %s", s)
	}
	return event, nil
}

// NextStatus resolves the status produced by applying event from the current
// status. Fails with ErrInvalidTransition when the state machine forbids it,
// including every event attempted from a terminal status.
func NextStatus(current ReservationStatus, event ReservationEvent) (ReservationStatus, error) {
	target, exists := eventTargets[event]
	if !exists {
		return "", fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event)
	}
	if !current.CanTransitionTo(target) {
		return "", fmt.Errorf("%w: %s -> %s (event %s)", ErrInvalidTransition, current, target, event)
	}
	return target, nil
}
