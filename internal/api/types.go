package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

// AppointmentRequest is the body of create, update and validate calls. Times
// are given either as start/end instants or as a date plus HH:mm start and
// end times, composed in the server's local time.
type AppointmentRequest struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title" validate:"max=200"`
	Patient   string     `json:"patient" validate:"max=200"`
	Doctor    string     `json:"doctor" validate:"max=200"`
	Notes     string     `json:"notes" validate:"max=2000"`
	Start     *time.Time `json:"start,omitempty" validate:"required_without=Date"`
	End       *time.Time `json:"end,omitempty" validate:"required_with=Start"`
	Date      string     `json:"date,omitempty" validate:"required_without=Start"`
	StartTime string     `json:"start_time,omitempty" validate:"required_with=Date"`
	EndTime   string     `json:"end_time,omitempty" validate:"required_with=Date"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Patient   string    `json:"patient"`
	Doctor    string    `json:"doctor"`
	Notes     string    `json:"notes"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type ListAppointmentsResponse struct {
	CalendarID   string                `json:"calendar_id"`
	View         string                `json:"view,omitempty"`
	From         *time.Time            `json:"from,omitempty"`
	To           *time.Time            `json:"to,omitempty"`
	Appointments []AppointmentResponse `json:"appointments"`
}

type ListCalendarsResponse struct {
	Calendars    []string             `json:"calendars"`
	WorkingHours WorkingHoursResponse `json:"working_hours"`
}

// WorkingHoursResponse tells the widget which hours to render.
type WorkingHoursResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Strict bool   `json:"strict"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		Title:     a.Title,
		Patient:   a.Patient,
		Doctor:    a.Doctor,
		Notes:     a.Notes,
		Start:     a.Start,
		End:       a.End,
		Date:      a.Start.Format(appointment.DateLayout),
		StartTime: a.Start.Format(appointment.TimeLayout),
		EndTime:   a.End.Format(appointment.TimeLayout),
	}
}

func toResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toResponse(a))
	}
	return out
}

// toAppointment resolves the request into an appointment in loc.
func (req AppointmentRequest) toAppointment(loc *time.Location) (appointment.Appointment, error) {
	a := appointment.Appointment{
		Title:   req.Title,
		Patient: req.Patient,
		Doctor:  req.Doctor,
		Notes:   req.Notes,
	}

	if req.Date != "" {
		start, err := appointment.Compose(req.Date, req.StartTime, loc)
		if err != nil {
			return a, err
		}
		end, err := appointment.Compose(req.Date, req.EndTime, loc)
		if err != nil {
			return a, err
		}
		a.Start, a.End = start, end
		return a, nil
	}

	if req.Start == nil || req.End == nil {
		return a, appointment.ErrInvalidInterval
	}
	a.Start = req.Start.In(loc)
	a.End = req.End.In(loc)
	return a, nil
}
