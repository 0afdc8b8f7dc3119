package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProcessor struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProcessor) ProcessDueExpenses(context.Context, time.Time) (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestRecurringWorkerRunsImmediatelyAndOnTick(t *testing.T) {
	p := &fakeProcessor{}
	w := NewRecurringWorker(p, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for p.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("processor called %d times, want at least 3", p.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRecurringWorkerSurvivesErrors(t *testing.T) {
	p := &fakeProcessor{err: errors.New("store offline")}
	w := NewRecurringWorker(p, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if p.calls.Load() < 2 {
		t.Errorf("processor called %d times, want retries after failure", p.calls.Load())
	}
}
