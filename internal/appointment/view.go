package appointment

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth:
		return v, nil
	case "":
		return ViewWeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
	}
}

// ParseWeekStart accepts "monday" or "sunday".
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q", s)
	}
}

// ViewRange returns the half-open interval [from, to) the view shows around
// anchor.
func ViewRange(v View, anchor time.Time, weekStart time.Weekday) (from, to time.Time, err error) {
	y, m, d := anchor.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, anchor.Location())

	switch v {
	case ViewDay:
		return day, day.AddDate(0, 0, 1), nil
	case ViewWeek:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		from = day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7), nil
	case ViewMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
		return from, from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
}

// InRange lists the appointments intersecting [from, to), ordered by start.
func InRange(s Snapshot, from, to time.Time) []Appointment {
	out := make([]Appointment, 0)
	for _, a := range s {
		if a.Start.Before(to) && a.End.After(from) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
