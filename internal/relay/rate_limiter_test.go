package relay

import (
	"testing"
	"time"
)

// TestRateLimiterAllowsBurstThenBlocks verifies the bucket admits exactly the
// configured burst before refill.
func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := newRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.allow() {
			t.Fatalf("request %d rejected within burst", i)
		}
	}
	if rl.allow() {
		t.Error("request beyond burst was admitted")
	}
}

// TestRateLimiterRefills verifies tokens come back over time.
func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	if !rl.allow() {
		t.Fatal("first request rejected")
	}
	if rl.allow() {
		t.Fatal("second immediate request admitted")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.allow() {
		t.Error("request rejected after refill interval")
	}
}
