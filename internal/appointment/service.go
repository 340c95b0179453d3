package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-calendar/internal/config"
	"github.com/hackgods/appointment-calendar/internal/lock"
)

var ErrCalendarBusy = errors.New("calendar is being modified, please retry")

// EventRecorder receives every committed change. Failures are logged by the
// service and never undo a commit.
type EventRecorder interface {
	Record(ctx context.Context, ev Event) error
}

type Service struct {
	store     *Store
	locker    lock.Locker
	recorder  EventRecorder
	hours     WorkingHours
	weekStart time.Weekday
	log       *zap.Logger

	newID func() uuid.UUID
	now   func() time.Time
}

func NewService(store *Store, locker lock.Locker, recorder EventRecorder, cfg config.Config, log *zap.Logger) (*Service, error) {
	weekStart, err := ParseWeekStart(cfg.WeekStart)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		locker:   locker,
		recorder: recorder,
		hours: WorkingHours{
			StartHour: cfg.WorkingHoursStart,
			EndHour:   cfg.WorkingHoursEnd,
			Strict:    cfg.WorkingHoursStrict,
		},
		weekStart: weekStart,
		log:       log,
		newID:     uuid.New,
		now:       time.Now,
	}, nil
}

// WithIDGenerator replaces the id source, for deterministic ids in tests.
func (s *Service) WithIDGenerator(fn func() uuid.UUID) *Service {
	s.newID = fn
	return s
}

func (s *Service) WorkingHours() WorkingHours {
	return s.hours
}

func (s *Service) opts() CommitOptions {
	return CommitOptions{Hours: s.hours, NewID: s.newID}
}

// Create commits a new appointment. Any id on the input is ignored.
func (s *Service) Create(ctx context.Context, calendarID string, a Appointment) (*Appointment, error) {
	a.ID = uuid.Nil
	return s.commit(ctx, calendarID, a, EventAppointmentCreated)
}

// Update replaces the stored appointment with the same id.
func (s *Service) Update(ctx context.Context, calendarID string, a Appointment) (*Appointment, error) {
	if a.IsNew() {
		return nil, ErrAppointmentNotFound
	}
	return s.commit(ctx, calendarID, a, EventAppointmentUpdated)
}

// Validate reports whether a could be committed to calendarID right now.
func (s *Service) Validate(_ context.Context, calendarID string, a Appointment) error {
	if err := checkCalendar(calendarID); err != nil {
		return err
	}
	return Validate(a, s.store.Snapshot(calendarID), s.hours)
}

func (s *Service) commit(ctx context.Context, calendarID string, a Appointment, evType EventType) (*Appointment, error) {
	if err := checkCalendar(calendarID); err != nil {
		return nil, err
	}

	var committed Appointment

	// Read-validate-swap happens inside the lock so two commits to the same
	// calendar cannot both pass the overlap check.
	err := s.locker.WithCalendarLock(ctx, calendarID, func(lockCtx context.Context) error {
		next, appt, err := ValidateAndCommit(a, s.store.Snapshot(calendarID), s.opts())
		if err != nil {
			return err
		}
		s.store.Replace(calendarID, next)
		committed = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, ErrCalendarBusy
		}
		return nil, err
	}

	s.log.Info("appointment committed",
		zap.String("event", string(evType)),
		zap.String("calendar_id", calendarID),
		zap.Stringer("appointment_id", committed.ID),
	)
	s.recordEvent(ctx, Event{
		Type:          evType,
		CalendarID:    calendarID,
		AppointmentID: committed.ID,
		Appointment:   &committed,
	})

	return &committed, nil
}

// Delete removes an appointment. Unknown ids are not an error; removed
// reports whether anything changed.
func (s *Service) Delete(ctx context.Context, calendarID string, id uuid.UUID) (removed bool, err error) {
	if err := checkCalendar(calendarID); err != nil {
		return false, err
	}

	err = s.locker.WithCalendarLock(ctx, calendarID, func(lockCtx context.Context) error {
		var next Snapshot
		next, removed = Delete(id, s.store.Snapshot(calendarID))
		if removed {
			s.store.Replace(calendarID, next)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return false, ErrCalendarBusy
		}
		return false, err
	}

	if removed {
		s.log.Info("appointment deleted",
			zap.String("calendar_id", calendarID),
			zap.Stringer("appointment_id", id),
		)
		s.recordEvent(ctx, Event{
			Type:          EventAppointmentDeleted,
			CalendarID:    calendarID,
			AppointmentID: id,
		})
	}
	return removed, nil
}

// Get returns a single appointment.
func (s *Service) Get(_ context.Context, calendarID string, id uuid.UUID) (*Appointment, error) {
	a, ok := s.store.Snapshot(calendarID).Find(id)
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

// List returns every appointment of the calendar in insertion order.
func (s *Service) List(_ context.Context, calendarID string) Snapshot {
	return s.store.Snapshot(calendarID)
}

// ListView returns the appointments visible in a day, week or month view
// around anchor, and the range the view covers.
func (s *Service) ListView(_ context.Context, calendarID string, v View, anchor time.Time) ([]Appointment, time.Time, time.Time, error) {
	from, to, err := ViewRange(v, anchor, s.weekStart)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return InRange(s.store.Snapshot(calendarID), from, to), from, to, nil
}

func (s *Service) Calendars() []string {
	return s.store.Calendars()
}

// Seed commits initial appointments without recording audit events. Each one
// is validated against those committed before it.
func (s *Service) Seed(ctx context.Context, calendarID string, appts []Appointment) error {
	if err := checkCalendar(calendarID); err != nil {
		return err
	}
	return s.locker.WithCalendarLock(ctx, calendarID, func(lockCtx context.Context) error {
		snap := s.store.Snapshot(calendarID)
		for i, a := range appts {
			a.ID = uuid.Nil
			next, _, err := ValidateAndCommit(a, snap, s.opts())
			if err != nil {
				return fmt.Errorf("seed %s #%d: %w", calendarID, i, err)
			}
			snap = next
		}
		s.store.Replace(calendarID, snap)
		s.log.Info("calendar seeded", zap.String("calendar_id", calendarID), zap.Int("count", len(appts)))
		return nil
	})
}

func (s *Service) recordEvent(ctx context.Context, ev Event) {
	if s.recorder == nil {
		return
	}
	ev.CreatedAt = s.now()
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.log.Warn("failed to record event",
			zap.String("event", string(ev.Type)),
			zap.Stringer("appointment_id", ev.AppointmentID),
			zap.Error(err),
		)
	}
}

func checkCalendar(calendarID string) error {
	if strings.TrimSpace(calendarID) == "" {
		return ErrInvalidCalendar
	}
	return nil
}
