// Package notify schedules the daily expense reminder.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledgerly/internal/core"
)

// Reminder is the payload delivered when the daily reminder fires.
type Reminder struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fireAt"`
}

// Notifier delivers a reminder somewhere a person will see it.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Scheduler keeps at most one repeating daily reminder.
type Scheduler interface {
	Schedule(hour, minute int) error
	Cancel()
}

// NextOccurrence returns the first local hour:minute strictly after now.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	now = now.Local()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.Local)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, time.Local)
	}
	return next
}

// NewReminder builds the standard reminder for the given fire time.
func NewReminder(fireAt time.Time) Reminder {
	return Reminder{
		Title:  "Expense reminder",
		Body:   fmt.Sprintf("Log today's expenses (%s).", core.DateToString(fireAt)),
		FireAt: fireAt,
	}
}

// DailyScheduler fires a Notifier once a day in process using timers.
type DailyScheduler struct {
	notifier Notifier
	timeout  time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	hour   int
	minute int
	active bool

	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

var _ Scheduler = (*DailyScheduler)(nil)

func NewDailyScheduler(n Notifier) *DailyScheduler {
	return &DailyScheduler{
		notifier:  n,
		timeout:   10 * time.Second,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Schedule replaces any existing reminder with one at hour:minute local time.
func (s *DailyScheduler) Schedule(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("schedule %02d:%02d: %w", hour, minute, core.ErrInvalidReminderTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.hour, s.minute, s.active = hour, minute, true
	s.armLocked()

	slog.Info("Daily reminder scheduled", "hour", hour, "minute", minute)
	return nil
}

// Cancel stops the reminder. Calling it with nothing scheduled is a no-op.
func (s *DailyScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.stopLocked()
	s.active = false
	slog.Info("Daily reminder cancelled")
}

// Next reports the next fire time, if a reminder is scheduled.
func (s *DailyScheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return time.Time{}, false
	}
	return NextOccurrence(s.now(), s.hour, s.minute), true
}

func (s *DailyScheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// Invalidates callbacks that already started before Stop.
	s.gen++
}

func (s *DailyScheduler) armLocked() {
	fireAt := NextOccurrence(s.now(), s.hour, s.minute)
	gen := s.gen
	s.timer = s.afterFunc(fireAt.Sub(s.now()), func() { s.fire(gen, fireAt) })
}

func (s *DailyScheduler) fire(gen uint64, fireAt time.Time) {
	s.mu.Lock()
	if gen != s.gen || !s.active {
		s.mu.Unlock()
		return
	}
	s.armLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, NewReminder(fireAt)); err != nil {
		slog.Error("Failed to deliver reminder", "error", err, "fire_at", fireAt)
	}
}

// LogNotifier writes reminders to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r Reminder) error {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, r.Title, "body", r.Body, "fire_at", r.FireAt)
	return nil
}
