package appointment

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Editable fields accepted by Edit.Apply.
const (
	FieldTitle     = "title"
	FieldPatient   = "patient"
	FieldDoctor    = "doctor"
	FieldNotes     = "notes"
	FieldDate      = "date"
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
)

// Edit is an in-progress change to an appointment. Candidate accumulates
// field edits; Original is what Reset goes back to.
type Edit struct {
	Original  Appointment
	Candidate Appointment
}

func NewEdit(a Appointment) *Edit {
	return &Edit{Original: a, Candidate: a}
}

// Apply sets one field of the candidate from its form value.
//
// date moves both boundaries to the given day and keeps their time of day.
// start_time and end_time change the time of day and keep the boundary's date.
func (e *Edit) Apply(field, value string) error {
	c := &e.Candidate
	switch field {
	case FieldTitle:
		c.Title = value
	case FieldPatient:
		c.Patient = value
	case FieldDoctor:
		c.Doctor = value
	case FieldNotes:
		c.Notes = value
	case FieldDate:
		day, err := time.ParseInLocation(DateLayout, value, locationOf(c.Start))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidFieldValue, field, value)
		}
		c.Start = onDay(c.Start, day)
		c.End = onDay(c.End, day)
	case FieldStartTime:
		t, err := atTime(c.Start, value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidFieldValue, field, value)
		}
		c.Start = t
	case FieldEndTime:
		t, err := atTime(c.End, value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidFieldValue, field, value)
		}
		c.End = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Reset throws away every applied change.
func (e *Edit) Reset() {
	e.Candidate = Reset(e.Candidate, e.Original)
}

// Dirty reports whether the candidate differs from the original.
func (e *Edit) Dirty() bool {
	o, c := e.Original, e.Candidate
	return o.ID != c.ID || o.Title != c.Title || o.Patient != c.Patient ||
		o.Doctor != c.Doctor || o.Notes != c.Notes ||
		!o.Start.Equal(c.Start) || !o.End.Equal(c.End)
}

// Compose builds an instant from a YYYY-MM-DD date and an HH:mm time in loc.
func Compose(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidFieldValue, date, clock)
	}
	return t, nil
}

func locationOf(t time.Time) *time.Location {
	if t.IsZero() {
		return time.Local
	}
	return t.Location()
}

func onDay(t, day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), day.Location())
}

func atTime(t time.Time, clock string) (time.Time, error) {
	hm, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	loc := locationOf(t)
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, loc), nil
}
