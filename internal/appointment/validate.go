package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkingHours is the daily window appointments must fall in.
//
// By default only the hour component of each boundary is compared: the start
// hour must be in [StartHour, EndHour) and the end hour in [StartHour, EndHour],
// so an appointment ending at 17:30 still passes a 17:00 window. Strict
// compares full instants against the start's calendar day instead.
type WorkingHours struct {
	StartHour int
	EndHour   int
	Strict    bool
}

func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 8, EndHour: 17}
}

// CommitOptions configures ValidateAndCommit.
type CommitOptions struct {
	Hours WorkingHours
	// NewID generates ids for new appointments. uuid.New is used when nil.
	NewID func() uuid.UUID
}

func (o CommitOptions) newID() uuid.UUID {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.New()
}

// CheckWorkingHours returns ErrOutOfHours when c falls outside wh.
func CheckWorkingHours(c Appointment, wh WorkingHours) error {
	if wh.Strict {
		y, m, d := c.Start.Date()
		open := time.Date(y, m, d, wh.StartHour, 0, 0, 0, c.Start.Location())
		closing := time.Date(y, m, d, wh.EndHour, 0, 0, 0, c.Start.Location())
		if c.Start.Before(open) || c.End.After(closing) {
			return fmt.Errorf("%w: %s-%s is outside %02d:00-%02d:00", ErrOutOfHours,
				c.Start.Format("15:04"), c.End.Format("15:04"), wh.StartHour, wh.EndHour)
		}
		return nil
	}

	sh, eh := c.Start.Hour(), c.End.Hour()
	if sh < wh.StartHour || sh >= wh.EndHour || eh < wh.StartHour || eh > wh.EndHour {
		return fmt.Errorf("%w: %s-%s is outside %02d:00-%02d:00", ErrOutOfHours,
			c.Start.Format("15:04"), c.End.Format("15:04"), wh.StartHour, wh.EndHour)
	}
	return nil
}

// Overlaps reports whether c conflicts with a: c starts inside [a.Start, a.End),
// ends inside (a.Start, a.End], or fully contains a.
func Overlaps(c, a Appointment) bool {
	if !c.Start.Before(a.Start) && c.Start.Before(a.End) {
		return true
	}
	if c.End.After(a.Start) && !c.End.After(a.End) {
		return true
	}
	return !c.Start.After(a.Start) && !c.End.Before(a.End)
}

// FindConflict returns the first appointment in existing that c overlaps,
// skipping the appointment sharing c's id. A new candidate is compared
// against everything.
func FindConflict(c Appointment, existing Snapshot) (Appointment, bool) {
	for _, a := range existing {
		if !c.IsNew() && a.ID == c.ID {
			continue
		}
		if Overlaps(c, a) {
			return a, true
		}
	}
	return Appointment{}, false
}

// Validate runs every check ValidateAndCommit runs without committing.
func Validate(c Appointment, existing Snapshot, hours WorkingHours) error {
	if !c.Start.Before(c.End) {
		return ErrInvalidInterval
	}
	if !c.IsNew() {
		if _, ok := existing.Find(c.ID); !ok {
			return ErrAppointmentNotFound
		}
	}
	if err := CheckWorkingHours(c, hours); err != nil {
		return err
	}
	if a, ok := FindConflict(c, existing); ok {
		return fmt.Errorf("%w: conflicts with %s (%s-%s)", ErrOverlap,
			a.ID, a.Start.Format("2006-01-02 15:04"), a.End.Format("15:04"))
	}
	return nil
}

// ValidateAndCommit checks candidate against existing and, if it passes,
// returns a new snapshot containing it. An appointment with an id replaces
// the stored one wholesale; a new one gets a fresh id and is appended.
// existing is never modified.
func ValidateAndCommit(candidate Appointment, existing Snapshot, opts CommitOptions) (Snapshot, Appointment, error) {
	if err := Validate(candidate, existing, opts.Hours); err != nil {
		return existing, Appointment{}, err
	}

	next := existing.clone()
	if candidate.IsNew() {
		candidate.ID = opts.newID()
		return append(next, candidate), candidate, nil
	}

	for i := range next {
		if next[i].ID == candidate.ID {
			next[i] = candidate
			break
		}
	}
	return next, candidate, nil
}

// Delete returns a snapshot without the appointment id. Deleting an unknown
// id is a no-op and reports removed=false.
func Delete(id uuid.UUID, existing Snapshot) (next Snapshot, removed bool) {
	next = make(Snapshot, 0, len(existing))
	for _, a := range existing {
		if a.ID == id && id != uuid.Nil {
			removed = true
			continue
		}
		next = append(next, a)
	}
	if !removed {
		return existing, false
	}
	return next, true
}

// Reset discards in-progress changes to candidate.
func Reset(_, original Appointment) Appointment {
	return original
}
