package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

func TestDemo(t *testing.T) {
	appts := Demo(time.UTC)
	require.Len(t, appts, 2)

	var snap appointment.Snapshot
	for _, a := range appts {
		assert.True(t, a.IsNew())
		next, _, err := appointment.ValidateAndCommit(a, snap, appointment.CommitOptions{Hours: appointment.DefaultWorkingHours()})
		require.NoError(t, err, "demo appointment %q must be valid", a.Title)
		snap = next
	}
	assert.Equal(t, "Meeting 1", snap[0].Title)
	assert.Equal(t, time.Date(2023, time.August, 3, 14, 0, 0, 0, time.UTC), snap[1].Start)
}

const fixture = `
calendars:
  dr-smith:
    - title: Checkup
      patient: John Doe
      doctor: Dr. Smith
      start: "2023-08-02 10:00"
      end: "2023-08-02 12:00"
    - title: Follow-up
      patient: Jane Smith
      start: "2023-08-02 13:00"
      end: "2023-08-02 13:30"
  dr-johnson:
    - patient: Alex Brown
      notes: first visit
      start: "2023-08-03 09:00"
      end: "2023-08-03 10:00"
`

func TestParse(t *testing.T) {
	cals, err := Parse([]byte(fixture), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, []string{"dr-johnson", "dr-smith"}, CalendarIDs(cals))
	require.Len(t, cals["dr-smith"], 2)

	first := cals["dr-smith"][0]
	assert.Equal(t, "Checkup", first.Title)
	assert.Equal(t, "Dr. Smith", first.Doctor)
	assert.Equal(t, time.Date(2023, time.August, 2, 10, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2023, time.August, 2, 12, 0, 0, 0, time.UTC), first.End)

	assert.Equal(t, "first visit", cals["dr-johnson"][0].Notes)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "calendars: [oops"},
		{"bad start", "calendars:\n  a:\n    - start: \"02/08/2023 10:00\"\n      end: \"2023-08-02 12:00\"\n"},
		{"bad end", "calendars:\n  a:\n    - start: \"2023-08-02 10:00\"\n      end: \"noon\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	cals, err := LoadFile(path, time.UTC)
	require.NoError(t, err)
	assert.Len(t, cals, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), time.UTC)
	assert.Error(t, err)
}

func TestMarshalIsReadBack(t *testing.T) {
	in := map[string][]appointment.Appointment{"default": Demo(time.UTC)}

	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2023-08-02 10:00")

	out, err := Parse(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
