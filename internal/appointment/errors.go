package appointment

import "errors"

var (
	ErrOutOfHours          = errors.New("appointment falls outside working hours")
	ErrOverlap             = errors.New("appointment overlaps an existing appointment")
	ErrInvalidInterval     = errors.New("appointment must end after it starts")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrUnknownField        = errors.New("unknown appointment field")
	ErrInvalidFieldValue   = errors.New("invalid field value")
	ErrInvalidView         = errors.New("invalid calendar view")
	ErrInvalidCalendar     = errors.New("calendar id is required")
)
