// Package ical renders calendars as iCalendar feeds so the appointments can
// be subscribed to from other calendar clients.
package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

const (
	productID = "-//hackgods//appointment-calendar//EN"
	// Floating local time: appointments carry wall-clock times only.
	floatingLayout = "20060102T150405"
)

// Export renders appts as a VCALENDAR with one VEVENT per appointment.
func Export(calendarID string, appts []appointment.Appointment, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarID)

	for _, a := range appts {
		ev := cal.AddEvent(UID(calendarID, a))
		ev.SetDtStampTime(now)
		ev.SetProperty(ics.ComponentPropertyDtStart, a.Start.Format(floatingLayout))
		ev.SetProperty(ics.ComponentPropertyDtEnd, a.End.Format(floatingLayout))
		ev.SetSummary(Summary(a))
		if desc := Description(a); desc != "" {
			ev.SetDescription(desc)
		}
	}

	return cal.Serialize()
}

func UID(calendarID string, a appointment.Appointment) string {
	return fmt.Sprintf("%s@%s", a.ID, calendarID)
}

// Summary prefers the title and falls back to the patient name.
func Summary(a appointment.Appointment) string {
	if a.Title != "" {
		return a.Title
	}
	if a.Patient != "" {
		return a.Patient
	}
	return "Appointment"
}

func Description(a appointment.Appointment) string {
	var lines []string
	if a.Patient != "" {
		lines = append(lines, "Patient: "+a.Patient)
	}
	if a.Doctor != "" {
		lines = append(lines, "Doctor: "+a.Doctor)
	}
	if a.Notes != "" {
		lines = append(lines, a.Notes)
	}
	return strings.Join(lines, "\n")
}
