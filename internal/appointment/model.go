package appointment

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCalendar = "default"

// Appointment is a single booking on a calendar. A zero ID marks an
// appointment that has not been committed yet.
type Appointment struct {
	ID      uuid.UUID
	Title   string
	Patient string
	Doctor  string
	Notes   string
	Start   time.Time
	End     time.Time
}

// IsNew reports whether the appointment has never been committed.
func (a Appointment) IsNew() bool {
	return a.ID == uuid.Nil
}

// Duration of the appointment interval.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Snapshot is an ordered, immutable view of a calendar's appointments.
// Order is insertion order.
type Snapshot []Appointment

// Find returns the appointment with the given id.
func (s Snapshot) Find(id uuid.UUID) (Appointment, bool) {
	if id == uuid.Nil {
		return Appointment{}, false
	}
	for _, a := range s {
		if a.ID == id {
			return a, true
		}
	}
	return Appointment{}, false
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s), len(s)+1)
	copy(out, s)
	return out
}

type EventType string

const (
	EventAppointmentCreated EventType = "APPOINTMENT_CREATED"
	EventAppointmentUpdated EventType = "APPOINTMENT_UPDATED"
	EventAppointmentDeleted EventType = "APPOINTMENT_DELETED"
)

// Event describes a committed change to a calendar.
type Event struct {
	Type          EventType
	CalendarID    string
	AppointmentID uuid.UUID
	Appointment   *Appointment
	CreatedAt     time.Time
}
