package service

import "errors"

var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrServiceInactive      = errors.New("service is not active")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrSlotUnavailable      = errors.New("slot is not available")
	ErrOutsideBookingWindow = errors.New("date is outside booking window")
	ErrNotOwner             = errors.New("appointment belongs to another client")
	ErrInvalidTransition    = errors.New("appointment status does not allow this action")
	ErrTooEarlyToComplete   = errors.New("appointment has not started yet")
	ErrNotToday             = errors.New("appointment is not scheduled for today")
	ErrInvalidCode          = errors.New("invalid check-in code")
	ErrInvalidSchedule      = errors.New("invalid working hours")
	ErrInvalidPolicy        = errors.New("invalid booking policy")
	ErrPastDate             = errors.New("date is in the past")
	ErrInvalidService       = errors.New("invalid service data")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrUserNotFound         = errors.New("user not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrForbidden            = errors.New("action is allowed only for masters")
)
