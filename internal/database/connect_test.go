package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

// instantSleep は待たずに即座に発火するsleep関数。
func instantSleep(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{20, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := CalculateBackoff(tt.failures); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}

func TestWaitForConnection_SucceedsAfterRetries(t *testing.T) {
	p := &flakyPinger{failures: 2}

	if err := WaitForConnection(context.Background(), p, 5, instantSleep); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 ping calls, got %d", p.calls)
	}
}

func TestWaitForConnection_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 100}

	err := WaitForConnection(context.Background(), p, 3, instantSleep)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.calls != 3 {
		t.Errorf("expected 3 ping calls, got %d", p.calls)
	}
}

func TestWaitForConnection_StopsOnCancel(t *testing.T) {
	p := &flakyPinger{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := func(time.Duration) <-chan time.Time { return make(chan time.Time) }
	err := WaitForConnection(ctx, p, 5, never)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 ping call, got %d", p.calls)
	}
}
