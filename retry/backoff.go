package retry

import (
	"math"
	"math/rand"
	"time"
)

// Delay computes the backoff inserted after attempt fails (0-indexed: the
// sleep before the first retry is Delay(0, p)).
//
// The strategy's raw delay is capped at MaxDelay first; jitter, when enabled,
// perturbs the capped value by a uniform draw in ±delay*JitterFactor and the
// result is clamped at zero. Pure and total over policies that passed
// NewPolicy.
func Delay(attempt int, p Policy) time.Duration {
	base := float64(p.BaseDelay)

	var d float64
	switch p.Strategy {
	case Linear:
		d = base * float64(attempt+1)
	case Constant:
		d = base
	default: // Exponential
		d = base * math.Pow(p.Multiplier, float64(attempt))
	}

	if limit := float64(p.MaxDelay); d > limit {
		d = limit
	}

	if p.Jitter {
		span := d * p.JitterFactor
		d += (rand.Float64()*2 - 1) * span
		if d < 0 {
			d = 0
		}
	}

	return time.Duration(d)
}
