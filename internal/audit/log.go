package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-calendar/internal/appointment"
)

// LogRecorder writes events to the logger when no database is configured.
type LogRecorder struct {
	log *zap.Logger
}

func NewLogRecorder(log *zap.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(_ context.Context, ev appointment.Event) error {
	payload, err := Payload(ev)
	if err != nil {
		return err
	}
	r.log.Debug("audit event",
		zap.String("event", string(ev.Type)),
		zap.String("calendar_id", ev.CalendarID),
		zap.Stringer("appointment_id", ev.AppointmentID),
		zap.ByteString("payload", payload),
		zap.Time("created_at", ev.CreatedAt),
	)
	return nil
}
