// Package seed provides the appointments a calendar starts with: the built-in
// demo set or a YAML fixture.
package seed

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

const fixtureTimeLayout = "2006-01-02 15:04"

// Demo returns the two sample appointments the calendar ships with.
func Demo(loc *time.Location) []appointment.Appointment {
	if loc == nil {
		loc = time.Local
	}
	return []appointment.Appointment{
		{
			Title:   "Meeting 1",
			Patient: "John Doe",
			Doctor:  "Dr. Smith",
			Notes:   "Routine checkup",
			Start:   time.Date(2023, time.August, 2, 10, 0, 0, 0, loc),
			End:     time.Date(2023, time.August, 2, 12, 0, 0, 0, loc),
		},
		{
			Title:   "Meeting 2",
			Patient: "Jane Smith",
			Doctor:  "Dr. Johnson",
			Notes:   "Follow-up appointment",
			Start:   time.Date(2023, time.August, 3, 14, 0, 0, 0, loc),
			End:     time.Date(2023, time.August, 3, 16, 0, 0, 0, loc),
		},
	}
}

// Fixture is the YAML layout:
//
//	calendars:
//	  default:
//	    - title: Checkup
//	      patient: John Doe
//	      doctor: Dr. Smith
//	      start: "2023-08-02 10:00"
//	      end: "2023-08-02 12:00"
type Fixture struct {
	Calendars map[string][]FixtureAppointment `yaml:"calendars"`
}

type FixtureAppointment struct {
	Title   string `yaml:"title,omitempty"`
	Patient string `yaml:"patient,omitempty"`
	Doctor  string `yaml:"doctor,omitempty"`
	Notes   string `yaml:"notes,omitempty"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// LoadFile reads a fixture from disk.
func LoadFile(path string, loc *time.Location) (map[string][]appointment.Appointment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, loc)
}

// Parse decodes a fixture and resolves its times in loc.
func Parse(data []byte, loc *time.Location) (map[string][]appointment.Appointment, error) {
	if loc == nil {
		loc = time.Local
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	out := make(map[string][]appointment.Appointment, len(f.Calendars))
	for calendarID, entries := range f.Calendars {
		if calendarID == "" {
			return nil, appointment.ErrInvalidCalendar
		}
		appts := make([]appointment.Appointment, 0, len(entries))
		for i, e := range entries {
			start, err := time.ParseInLocation(fixtureTimeLayout, e.Start, loc)
			if err != nil {
				return nil, fmt.Errorf("calendar %s entry %d: start: %w", calendarID, i, err)
			}
			end, err := time.ParseInLocation(fixtureTimeLayout, e.End, loc)
			if err != nil {
				return nil, fmt.Errorf("calendar %s entry %d: end: %w", calendarID, i, err)
			}
			appts = append(appts, appointment.Appointment{
				Title:   e.Title,
				Patient: e.Patient,
				Doctor:  e.Doctor,
				Notes:   e.Notes,
				Start:   start,
				End:     end,
			})
		}
		out[calendarID] = appts
	}
	return out, nil
}

// Marshal encodes calendars in the fixture layout Parse reads.
func Marshal(calendars map[string][]appointment.Appointment) ([]byte, error) {
	f := Fixture{Calendars: make(map[string][]FixtureAppointment, len(calendars))}
	for calendarID, appts := range calendars {
		entries := make([]FixtureAppointment, 0, len(appts))
		for _, a := range appts {
			entries = append(entries, FixtureAppointment{
				Title:   a.Title,
				Patient: a.Patient,
				Doctor:  a.Doctor,
				Notes:   a.Notes,
				Start:   a.Start.Format(fixtureTimeLayout),
				End:     a.End.Format(fixtureTimeLayout),
			})
		}
		f.Calendars[calendarID] = entries
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode seed file: %w", err)
	}
	return data, nil
}

// CalendarIDs returns the fixture's calendar ids in a stable order.
func CalendarIDs(m map[string][]appointment.Appointment) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
