package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hackgods/appointment-calendar/internal/appointment"
	"github.com/hackgods/appointment-calendar/internal/ical"
)

// AppointmentService is what the handlers need from appointment.Service.
type AppointmentService interface {
	Create(ctx context.Context, calendarID string, a appointment.Appointment) (*appointment.Appointment, error)
	Update(ctx context.Context, calendarID string, a appointment.Appointment) (*appointment.Appointment, error)
	Validate(ctx context.Context, calendarID string, a appointment.Appointment) error
	Get(ctx context.Context, calendarID string, id uuid.UUID) (*appointment.Appointment, error)
	List(ctx context.Context, calendarID string) appointment.Snapshot
	ListView(ctx context.Context, calendarID string, v appointment.View, anchor time.Time) ([]appointment.Appointment, time.Time, time.Time, error)
	Delete(ctx context.Context, calendarID string, id uuid.UUID) (bool, error)
	Calendars() []string
	WorkingHours() appointment.WorkingHours
}

type appointmentHandlers struct {
	svc      AppointmentService
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

func (h *appointmentHandlers) listCalendars(w http.ResponseWriter, r *http.Request) {
	wh := h.svc.WorkingHours()
	writeJSON(w, http.StatusOK, ListCalendarsResponse{
		Calendars: h.svc.Calendars(),
		WorkingHours: WorkingHoursResponse{
			Start:  fmt.Sprintf("%02d:00", wh.StartHour),
			End:    fmt.Sprintf("%02d:00", wh.EndHour),
			Strict: wh.Strict,
		},
	})
}

func (h *appointmentHandlers) list(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendarID")
	q := r.URL.Query()

	// Without a view or date the whole calendar is returned.
	if q.Get("view") == "" && q.Get("date") == "" {
		writeJSON(w, http.StatusOK, ListAppointmentsResponse{
			CalendarID:   calendarID,
			Appointments: toResponses(h.svc.List(r.Context(), calendarID)),
		})
		return
	}

	view, err := appointment.ParseView(q.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_view", "view must be day, week or month")
		return
	}

	anchor := h.now().In(h.loc)
	if d := q.Get("date"); d != "" {
		anchor, err = time.ParseInLocation(appointment.DateLayout, d, h.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
	}

	appts, from, to, err := h.svc.ListView(r.Context(), calendarID, view, anchor)
	if err != nil {
		handleAppointmentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListAppointmentsResponse{
		CalendarID:   calendarID,
		View:         string(view),
		From:         &from,
		To:           &to,
		Appointments: toResponses(appts),
	})
}

func (h *appointmentHandlers) exportICS(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendarID")
	body := ical.Export(calendarID, h.svc.List(r.Context(), calendarID), h.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+calendarID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *appointmentHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	appt, err := h.svc.Get(r.Context(), chi.URLParam(r, "calendarID"), id)
	if err != nil {
		handleAppointmentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*appt))
}

func (h *appointmentHandlers) create(w http.ResponseWriter, r *http.Request) {
	candidate, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}

	appt, err := h.svc.Create(r.Context(), chi.URLParam(r, "calendarID"), candidate)
	if err != nil {
		handleAppointmentError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(*appt))
}

func (h *appointmentHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	candidate, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}
	candidate.ID = id

	appt, err := h.svc.Update(r.Context(), chi.URLParam(r, "calendarID"), candidate)
	if err != nil {
		handleAppointmentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*appt))
}

// validateCandidate is a dry run of create or update (when an id is given).
func (h *appointmentHandlers) validateCandidate(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	candidate, ok := h.decodeInto(w, r, &req)
	if !ok {
		return
	}

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}
		candidate.ID = id
	}

	if err := h.svc.Validate(r.Context(), chi.URLParam(r, "calendarID"), candidate); err != nil {
		handleAppointmentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}

func (h *appointmentHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Delete(r.Context(), chi.URLParam(r, "calendarID"), id); err != nil {
		handleAppointmentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *appointmentHandlers) decodeCandidate(w http.ResponseWriter, r *http.Request) (appointment.Appointment, bool) {
	var req AppointmentRequest
	return h.decodeInto(w, r, &req)
}

func (h *appointmentHandlers) decodeInto(w http.ResponseWriter, r *http.Request, req *AppointmentRequest) (appointment.Appointment, bool) {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return appointment.Appointment{}, false
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return appointment.Appointment{}, false
	}

	candidate, err := req.toAppointment(h.loc)
	if err != nil {
		handleAppointmentError(w, err)
		return appointment.Appointment{}, false
	}
	return candidate, true
}

func parseAppointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrOutOfHours):
		writeError(w, http.StatusUnprocessableEntity, "out_of_hours", err.Error())
	case errors.Is(err, appointment.ErrOverlap):
		writeError(w, http.StatusConflict, "overlap", err.Error())
	case errors.Is(err, appointment.ErrInvalidInterval):
		writeError(w, http.StatusUnprocessableEntity, "invalid_interval", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrCalendarBusy):
		writeError(w, http.StatusConflict, "calendar_busy", "calendar is currently being modified, please retry shortly")
	case errors.Is(err, appointment.ErrInvalidFieldValue):
		writeError(w, http.StatusBadRequest, "invalid_field_value", err.Error())
	case errors.Is(err, appointment.ErrInvalidCalendar):
		writeError(w, http.StatusBadRequest, "invalid_calendar", err.Error())
	case errors.Is(err, appointment.ErrInvalidView):
		writeError(w, http.StatusBadRequest, "invalid_view", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
