package util

import (
	"context"
	"testing"
	"time"
)

func TestThrottle_Allow(t *testing.T) {
	th := NewThrottle(100*time.Millisecond, 1)

	if !th.Allow() {
		t.Fatal("expected first run to be allowed")
	}
	if th.Allow() {
		t.Fatal("expected second immediate run to be throttled")
	}

	time.Sleep(150 * time.Millisecond)
	if !th.Allow() {
		t.Fatal("expected run to be allowed after the interval")
	}
}

func TestThrottle_Disabled(t *testing.T) {
	th := NewThrottle(0, 1)
	for i := 0; i < 5; i++ {
		if !th.Allow() {
			t.Fatalf("expected unthrottled run %d to be allowed", i)
		}
	}
}

func TestThrottle_Wait(t *testing.T) {
	th := NewThrottle(20*time.Millisecond, 1)
	th.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Fatal("wait returned too early")
	}
}
