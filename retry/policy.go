// Package retry executes operations under a validated backoff policy,
// absorbing transient failures and surfacing permanent ones immediately.
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Strategy selects how the delay grows between attempts.
type Strategy int

const (
	Exponential Strategy = iota // BaseDelay * Multiplier^attempt
	Linear                      // BaseDelay * (attempt + 1)
	Constant                    // BaseDelay
)

func (s Strategy) String() string {
	switch s {
	case Exponential:
		return "exponential"
	case Linear:
		return "linear"
	case Constant:
		return "constant"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a config string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "exponential", "":
		return Exponential, nil
	case "linear":
		return Linear, nil
	case "constant":
		return Constant, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidPolicy, s)
}

// ErrInvalidPolicy is wrapped by every NewPolicy rejection.
var ErrInvalidPolicy = errors.New("retry: invalid policy")

// Policy configures retry behavior.
//
// MaxAttempts counts retries beyond the first try, so MaxAttempts = 0 means
// exactly one try with no delay. JitterFactor is a fraction of the computed
// delay and must lie in [0, 1].
type Policy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64 // exponential strategy only
	Jitter       bool
	JitterFactor float64
	Strategy     Strategy
	Retryable    func(error) bool // nil retries every failure
}

// DefaultPolicy returns the stock policy: 3 retries, 1s base, 60s cap,
// doubling delays with 10% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		BaseDelay:    time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2,
		Jitter:       true,
		JitterFactor: 0.1,
		Strategy:     Exponential,
	}
}

// NewPolicy validates p and fills in a default multiplier. Invalid knobs are
// rejected here so the engine never has to re-check them mid-call.
func NewPolicy(p Policy) (Policy, error) {
	if p.MaxAttempts < 0 {
		return Policy{}, fmt.Errorf("%w: max attempts must be non-negative, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return Policy{}, fmt.Errorf("%w: base delay must be non-negative, got %s", ErrInvalidPolicy, p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return Policy{}, fmt.Errorf("%w: max delay %s is below base delay %s", ErrInvalidPolicy, p.MaxDelay, p.BaseDelay)
	}
	if p.JitterFactor < 0 || p.JitterFactor > 1 {
		return Policy{}, fmt.Errorf("%w: jitter factor must be in [0,1], got %g", ErrInvalidPolicy, p.JitterFactor)
	}
	if p.Multiplier == 0 {
		p.Multiplier = 2
	}
	return p, nil
}
