package ical

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

func TestExport(t *testing.T) {
	id := uuid.MustParse("5b0c1f8e-2d7a-4a57-9a43-7f3c2f0f6a11")
	appts := []appointment.Appointment{
		{
			ID:      id,
			Title:   "Meeting 1",
			Patient: "John Doe",
			Doctor:  "Dr. Smith",
			Notes:   "Routine checkup",
			Start:   time.Date(2023, time.August, 2, 10, 0, 0, 0, time.UTC),
			End:     time.Date(2023, time.August, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:    uuid.New(),
			Start: time.Date(2023, time.August, 3, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2023, time.August, 3, 16, 0, 0, 0, time.UTC),
		},
	}

	out := Export("clinic", appts, time.Date(2023, time.August, 1, 9, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "UID:"+id.String()+"@clinic")
	assert.Contains(t, out, "DTSTART:20230802T100000")
	assert.Contains(t, out, "DTEND:20230802T120000")
	assert.Contains(t, out, "SUMMARY:Meeting 1")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Appointment", events[1].GetProperty(ics.ComponentPropertySummary).Value)
}

func TestExportEmptyCalendar(t *testing.T) {
	out := Export("empty", nil, time.Now())
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestSummaryAndDescription(t *testing.T) {
	a := appointment.Appointment{Patient: "Jane Smith", Doctor: "Dr. Johnson", Notes: "Follow-up appointment"}

	assert.Equal(t, "Jane Smith", Summary(a))
	assert.Equal(t, "Patient: Jane Smith\nDoctor: Dr. Johnson\nFollow-up appointment", Description(a))

	a.Title = "Meeting 2"
	assert.Equal(t, "Meeting 2", Summary(a))
	assert.Empty(t, Description(appointment.Appointment{}))
}
