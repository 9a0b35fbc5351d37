package retry

import (
	"testing"
	"time"
)

func TestDelayExponential(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second, Multiplier: 2, Strategy: Exponential}

	want := []time.Duration{
		1 * time.Second,  // 1 * 2^0
		2 * time.Second,  // 1 * 2^1
		4 * time.Second,  // 1 * 2^2
		8 * time.Second,  // 1 * 2^3
		16 * time.Second, // 1 * 2^4
	}
	for attempt, w := range want {
		if got := Delay(attempt, p); got != w {
			t.Errorf("Delay(%d): got %s, want %s", attempt, got, w)
		}
	}
}

func TestDelayExponentialCapped(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2, Strategy: Exponential}

	// 2^6 = 64s raw, must be capped at 10s.
	if got := Delay(6, p); got != 10*time.Second {
		t.Errorf("capped delay: got %s, want 10s", got)
	}
}

func TestDelayLinear(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, MaxDelay: 7 * time.Second, Strategy: Linear}

	want := []time.Duration{
		2 * time.Second, // 2 * 1
		4 * time.Second, // 2 * 2
		6 * time.Second, // 2 * 3
		7 * time.Second, // 2 * 4 capped
		7 * time.Second, // 2 * 5 capped
	}
	for attempt, w := range want {
		if got := Delay(attempt, p); got != w {
			t.Errorf("Delay(%d): got %s, want %s", attempt, got, w)
		}
	}
}

func TestDelayConstant(t *testing.T) {
	p := Policy{BaseDelay: 3 * time.Second, MaxDelay: time.Minute, Strategy: Constant}

	for attempt := 0; attempt < 5; attempt++ {
		if got := Delay(attempt, p); got != 3*time.Second {
			t.Errorf("Delay(%d): got %s, want 3s", attempt, got)
		}
	}
}

func TestDelayJitterBounds(t *testing.T) {
	p := Policy{
		BaseDelay:    time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2,
		Strategy:     Exponential,
		Jitter:       true,
		JitterFactor: 0.25,
	}

	for attempt := 0; attempt < 6; attempt++ {
		raw := Delay(attempt, Policy{
			BaseDelay: p.BaseDelay, MaxDelay: p.MaxDelay,
			Multiplier: p.Multiplier, Strategy: p.Strategy,
		})
		lo := time.Duration(float64(raw) * (1 - p.JitterFactor))
		hi := time.Duration(float64(raw) * (1 + p.JitterFactor))

		for i := 0; i < 200; i++ {
			got := Delay(attempt, p)
			if got < lo || got > hi {
				t.Fatalf("Delay(%d) = %s outside jitter bounds [%s, %s]", attempt, got, lo, hi)
			}
		}
	}
}

func TestDelayJitterNeverNegative(t *testing.T) {
	// Full jitter on a zero-ish base can only be clamped, never negative.
	p := Policy{BaseDelay: time.Nanosecond, MaxDelay: time.Second, Strategy: Constant, Jitter: true, JitterFactor: 1}

	for i := 0; i < 1000; i++ {
		if got := Delay(0, p); got < 0 {
			t.Fatalf("negative delay: %s", got)
		}
	}
}
