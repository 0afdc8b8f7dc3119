package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ledgerly/internal/core"
)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		h, m int
		want time.Time
	}{
		{"later today", time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local), 20, 0, time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local)},
		{"already passed", time.Date(2025, 3, 10, 21, 0, 0, 0, time.Local), 20, 0, time.Date(2025, 3, 11, 20, 0, 0, 0, time.Local)},
		{"exactly now", time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local), 20, 0, time.Date(2025, 3, 11, 20, 0, 0, 0, time.Local)},
		{"month end", time.Date(2025, 1, 31, 23, 30, 0, 0, time.Local), 7, 15, time.Date(2025, 2, 1, 7, 15, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOccurrence(tt.now, tt.h, tt.m); !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []Reminder
}

func (r *recordingNotifier) Notify(_ context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders = append(r.reminders, rem)
	return nil
}

type fakeClock struct {
	now       time.Time
	delays    []time.Duration
	callbacks []func()
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) *time.Timer {
	c.delays = append(c.delays, d)
	c.callbacks = append(c.callbacks, f)
	return time.NewTimer(time.Hour)
}

func newTestScheduler(now time.Time) (*DailyScheduler, *fakeClock, *recordingNotifier) {
	n := &recordingNotifier{}
	clock := &fakeClock{now: now}
	s := NewDailyScheduler(n)
	s.now = func() time.Time { return clock.now }
	s.afterFunc = clock.afterFunc
	return s, clock, n
}

func TestDailySchedulerFiresAndRearms(t *testing.T) {
	s, clock, n := newTestScheduler(time.Date(2025, 3, 10, 19, 0, 0, 0, time.Local))
	defer s.Cancel()

	if err := s.Schedule(20, 0); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if clock.delays[0] != time.Hour {
		t.Errorf("first delay = %v, want 1h", clock.delays[0])
	}

	clock.now = time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local)
	clock.callbacks[0]()

	if len(n.reminders) != 1 {
		t.Fatalf("got %d reminders, want 1", len(n.reminders))
	}
	if len(clock.callbacks) != 2 || clock.delays[1] != 24*time.Hour {
		t.Errorf("rearm delays = %v, want second of 24h", clock.delays)
	}
	if want := time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local); !n.reminders[0].FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", n.reminders[0].FireAt, want)
	}
}

func TestDailySchedulerRescheduleReplaces(t *testing.T) {
	s, clock, n := newTestScheduler(time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local))
	defer s.Cancel()

	_ = s.Schedule(8, 0)
	_ = s.Schedule(9, 30)

	// The callback from the replaced schedule must be inert.
	clock.callbacks[0]()
	if len(n.reminders) != 0 {
		t.Errorf("stale schedule fired %d reminders", len(n.reminders))
	}

	next, ok := s.Next()
	if !ok || next.Hour() != 9 || next.Minute() != 30 {
		t.Errorf("Next() = %v, %v; want 09:30", next, ok)
	}
}

func TestDailySchedulerCancel(t *testing.T) {
	s, clock, n := newTestScheduler(time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local))

	s.Cancel() // nothing scheduled
	_ = s.Schedule(8, 0)
	s.Cancel()
	s.Cancel()

	clock.callbacks[0]()
	if len(n.reminders) != 0 {
		t.Errorf("cancelled schedule fired %d reminders", len(n.reminders))
	}
	if _, ok := s.Next(); ok {
		t.Error("Next() reports a schedule after Cancel")
	}
}

func TestDailySchedulerRejectsInvalidTime(t *testing.T) {
	s, _, _ := newTestScheduler(time.Now())
	for _, hm := range [][2]int{{24, 0}, {-1, 0}, {12, 60}, {12, -5}} {
		if err := s.Schedule(hm[0], hm[1]); !errors.Is(err, core.ErrInvalidReminderTime) {
			t.Errorf("Schedule(%d, %d) error = %v, want ErrInvalidReminderTime", hm[0], hm[1], err)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	if err := (LogNotifier{}).Notify(context.Background(), NewReminder(time.Now())); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
}
