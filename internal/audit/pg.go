package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

const schema = `
CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_type     TEXT        NOT NULL,
	calendar_id    TEXT        NOT NULL,
	appointment_id UUID,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Entry is a stored audit row.
type Entry struct {
	ID            int64
	EventType     string
	CalendarID    string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// PgRecorder appends committed changes to the event_logs table. It is a
// write-only trail; appointments are never loaded back from it.
type PgRecorder struct {
	pool *pgxpool.Pool
}

func NewPgRecorder(pool *pgxpool.Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

func (r *PgRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create event_logs: %w", err)
	}
	return nil
}

func (r *PgRecorder) Record(ctx context.Context, ev appointment.Event) error {
	payload, err := Payload(ev)
	if err != nil {
		return err
	}

	var apptID *uuid.UUID
	if ev.AppointmentID != uuid.Nil {
		id := ev.AppointmentID
		apptID = &id
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, calendar_id, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, string(ev.Type), ev.CalendarID, apptID, payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

// Recent returns the newest entries of a calendar, newest first.
func (r *PgRecorder) Recent(ctx context.Context, calendarID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, calendar_id, appointment_id, payload, created_at
		FROM event_logs
		WHERE calendar_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, calendarID, limit)
	if err != nil {
		return nil, fmt.Errorf("query event logs: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.EventType, &e.CalendarID, &e.AppointmentID, &e.Payload, &e.CreatedAt)
		return e, err
	})
}

// Prune deletes entries created before cutoff and returns how many went.
func (r *PgRecorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune event logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRecorder) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type payload struct {
	Title   string    `json:"title,omitempty"`
	Patient string    `json:"patient,omitempty"`
	Doctor  string    `json:"doctor,omitempty"`
	Notes   string    `json:"notes,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Payload encodes the appointment carried by ev, or nil for deletions.
func Payload(ev appointment.Event) ([]byte, error) {
	if ev.Appointment == nil {
		return nil, nil
	}
	a := ev.Appointment
	data, err := json.Marshal(payload{
		Title:   a.Title,
		Patient: a.Patient,
		Doctor:  a.Doctor,
		Notes:   a.Notes,
		Start:   a.Start,
		End:     a.End,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return data, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
