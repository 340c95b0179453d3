package appointment

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, min int) time.Time {
	return time.Date(2023, time.August, day, hour, min, 0, 0, time.Local)
}

func appt(id uuid.UUID, start, end time.Time) Appointment {
	return Appointment{ID: id, Patient: "John Doe", Doctor: "Dr. Smith", Start: start, End: end}
}

func defaultOpts() CommitOptions {
	return CommitOptions{Hours: DefaultWorkingHours()}
}

func TestValidateAndCommitScenarios(t *testing.T) {
	id1 := uuid.New()
	existing := Snapshot{appt(id1, at(2, 10, 0), at(2, 12, 0))}

	t.Run("overlapping new appointment is rejected", func(t *testing.T) {
		next, _, err := ValidateAndCommit(appt(uuid.Nil, at(2, 11, 0), at(2, 13, 0)), existing, defaultOpts())
		require.ErrorIs(t, err, ErrOverlap)
		assert.Len(t, next, 1)
		assert.Equal(t, existing, next)
	})

	t.Run("free slot is accepted with a fresh id", func(t *testing.T) {
		next, committed, err := ValidateAndCommit(appt(uuid.Nil, at(2, 13, 0), at(2, 14, 0)), existing, defaultOpts())
		require.NoError(t, err)
		require.Len(t, next, 2)
		assert.NotEqual(t, uuid.Nil, committed.ID)
		assert.NotEqual(t, id1, committed.ID)
		assert.Equal(t, committed, next[1])
	})

	t.Run("out of hours wins over overlap", func(t *testing.T) {
		next, _, err := ValidateAndCommit(appt(uuid.Nil, at(2, 7, 0), at(2, 9, 0)), existing, defaultOpts())
		require.ErrorIs(t, err, ErrOutOfHours)
		assert.Equal(t, existing, next)

		_, _, err = ValidateAndCommit(appt(uuid.Nil, at(2, 7, 0), at(2, 11, 0)), existing, defaultOpts())
		require.ErrorIs(t, err, ErrOutOfHours)
	})

	t.Run("unchanged edit does not conflict with itself", func(t *testing.T) {
		next, committed, err := ValidateAndCommit(appt(id1, at(2, 10, 0), at(2, 12, 0)), existing, defaultOpts())
		require.NoError(t, err)
		assert.Len(t, next, 1)
		assert.Equal(t, id1, committed.ID)
	})
}

func TestCheckWorkingHours(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		strict  bool
		wantErr bool
	}{
		{"inside", at(2, 9, 0), at(2, 10, 0), false, false},
		{"starts at opening", at(2, 8, 0), at(2, 9, 0), false, false},
		{"ends at closing", at(2, 16, 0), at(2, 17, 0), false, false},
		{"ends at 17:30 passes hour check", at(2, 16, 0), at(2, 17, 30), false, false},
		{"starts before opening", at(2, 7, 59), at(2, 9, 0), false, true},
		{"starts at closing hour", at(2, 17, 0), at(2, 17, 30), false, true},
		{"ends after 17 hour", at(2, 16, 0), at(2, 18, 0), false, true},
		{"strict ends at closing", at(2, 16, 0), at(2, 17, 0), true, false},
		{"strict ends at 17:30", at(2, 16, 0), at(2, 17, 30), true, true},
		{"strict starts before opening", at(2, 7, 30), at(2, 9, 0), true, true},
		{"strict ends next day", at(2, 16, 0), at(3, 9, 0), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh := DefaultWorkingHours()
			wh.Strict = tt.strict
			err := CheckWorkingHours(appt(uuid.Nil, tt.start, tt.end), wh)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfHours)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	existing := appt(uuid.New(), at(2, 10, 0), at(2, 12, 0))

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"same interval", at(2, 10, 0), at(2, 12, 0), true},
		{"starts inside", at(2, 11, 0), at(2, 13, 0), true},
		{"ends inside", at(2, 9, 0), at(2, 11, 0), true},
		{"contains", at(2, 9, 0), at(2, 13, 0), true},
		{"contained", at(2, 10, 30), at(2, 11, 30), true},
		{"ends exactly at start", at(2, 9, 0), at(2, 10, 0), false},
		{"starts exactly at end", at(2, 12, 0), at(2, 13, 0), false},
		{"before", at(2, 8, 0), at(2, 9, 0), false},
		{"other day", at(3, 10, 0), at(3, 12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := appt(uuid.Nil, tt.start, tt.end)
			assert.Equal(t, tt.want, Overlaps(c, existing))
			assert.Equal(t, tt.want, Overlaps(existing, c), "overlap must be symmetric")
		})
	}
}

func TestValidateAndCommitRejectsInvalidInterval(t *testing.T) {
	_, _, err := ValidateAndCommit(appt(uuid.Nil, at(2, 12, 0), at(2, 10, 0)), nil, defaultOpts())
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, _, err = ValidateAndCommit(appt(uuid.Nil, at(2, 12, 0), at(2, 12, 0)), nil, defaultOpts())
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestValidateAndCommitUnknownID(t *testing.T) {
	existing := Snapshot{appt(uuid.New(), at(2, 10, 0), at(2, 12, 0))}

	next, _, err := ValidateAndCommit(appt(uuid.New(), at(2, 13, 0), at(2, 14, 0)), existing, defaultOpts())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Equal(t, existing, next)
}

func TestValidateAndCommitReplacesWholeAppointment(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	existing := Snapshot{
		appt(id1, at(2, 10, 0), at(2, 12, 0)),
		appt(id2, at(2, 14, 0), at(2, 15, 0)),
	}

	edited := Appointment{ID: id1, Patient: "Jane Smith", Start: at(2, 9, 0), End: at(2, 10, 0)}
	next, _, err := ValidateAndCommit(edited, existing, defaultOpts())
	require.NoError(t, err)

	require.Len(t, next, 2)
	assert.Equal(t, edited, next[0])
	assert.Empty(t, next[0].Doctor, "fields are replaced, not merged")
	assert.Equal(t, existing[1], next[1])

	assert.Equal(t, at(2, 10, 0), existing[0].Start, "input snapshot must not change")
}

func TestValidateAndCommitMovingIntoAnother(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	existing := Snapshot{
		appt(id1, at(2, 10, 0), at(2, 12, 0)),
		appt(id2, at(2, 14, 0), at(2, 15, 0)),
	}

	_, _, err := ValidateAndCommit(appt(id1, at(2, 13, 30), at(2, 14, 30)), existing, defaultOpts())
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), id2.String())
}

func TestValidateAndCommitUsesIDGenerator(t *testing.T) {
	fixed := uuid.MustParse("00000000-0000-0000-0000-000000000042")
	opts := defaultOpts()
	opts.NewID = func() uuid.UUID { return fixed }

	_, committed, err := ValidateAndCommit(appt(uuid.Nil, at(2, 9, 0), at(2, 10, 0)), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, fixed, committed.ID)
}

func TestCommittedAppointmentsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var snap Snapshot

	for i := 0; i < 500; i++ {
		day := 1 + rng.Intn(3)
		startMin := 7*60 + rng.Intn(22)*30
		length := 15 * (1 + rng.Intn(8))
		start := at(day, 0, 0).Add(time.Duration(startMin) * time.Minute)
		c := appt(uuid.Nil, start, start.Add(time.Duration(length)*time.Minute))

		// Sometimes edit an existing appointment instead.
		if len(snap) > 0 && rng.Intn(3) == 0 {
			c.ID = snap[rng.Intn(len(snap))].ID
		}

		next, _, err := ValidateAndCommit(c, snap, defaultOpts())
		if err != nil {
			require.True(t, errors.Is(err, ErrOverlap) || errors.Is(err, ErrOutOfHours), "unexpected error: %v", err)
			require.Equal(t, snap, next)
			continue
		}
		snap = next
	}

	require.NotEmpty(t, snap)
	for i := range snap {
		for j := range snap {
			if i == j {
				continue
			}
			assert.False(t, Overlaps(snap[i], snap[j]), "%v overlaps %v", snap[i], snap[j])
		}
	}
}

func TestDelete(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	existing := Snapshot{
		appt(id1, at(2, 10, 0), at(2, 12, 0)),
		appt(id2, at(2, 14, 0), at(2, 15, 0)),
	}

	next, removed := Delete(id1, existing)
	assert.True(t, removed)
	assert.Equal(t, Snapshot{existing[1]}, next)
	assert.Len(t, existing, 2, "input snapshot must not change")

	next, removed = Delete(uuid.New(), existing)
	assert.False(t, removed)
	assert.Equal(t, existing, next)

	_, removed = Delete(uuid.Nil, existing)
	assert.False(t, removed)
}

func TestReset(t *testing.T) {
	original := appt(uuid.New(), at(2, 10, 0), at(2, 12, 0))
	edited := original
	edited.Notes = "changed"

	assert.Equal(t, original, Reset(edited, original))
}
