package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLockNotAcquired = errors.New("calendar lock not acquired")

// Locker is used by the appointment service to serialize commits per calendar.
type Locker interface {
	WithCalendarLock(ctx context.Context, calendarID string, fn func(ctx context.Context) error) error
}

type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryLocker creates a locker that keeps one mutex per calendar in process.
func NewMemoryLocker() Locker {
	return &memoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memoryLocker) WithCalendarLock(ctx context.Context, calendarID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	m, ok := l.locks[calendarID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[calendarID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}
