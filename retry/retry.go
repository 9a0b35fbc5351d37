package retry

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrExhausted marks a call that consumed every permitted attempt. It is
// always wrapped together with the last underlying failure.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Outcome is the terminal result of a retried operation.
type Outcome[T any] struct {
	Succeeded  bool
	Value      T             // set iff Succeeded
	Attempts   int           // tries consumed, >= 1
	TotalDelay time.Duration // backoff actually slept; 0 on first-try success
	LastErr    error         // last failure, set iff not Succeeded
}

// Engine runs operations under a Policy and accumulates a retry counter
// across calls. One engine is meant to be owned by one client; the counter
// exists for observability and can be reset.
type Engine struct {
	totalRetries atomic.Int64
	logger       *slog.Logger
}

// NewEngine returns an engine logging through logger (slog.Default when nil).
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// TotalRetries reports how many retries this engine has performed since the
// last reset.
func (e *Engine) TotalRetries() int64 { return e.totalRetries.Load() }

// ResetStats zeroes the retry counter.
func (e *Engine) ResetStats() { e.totalRetries.Store(0) }

// Do runs op under p, retrying retryable failures up to p.MaxAttempts times
// beyond the first try.
//
// The two failure paths are distinct on purpose: a failure p.Retryable
// rejects returns immediately through the error value without touching retry
// bookkeeping, while exhausting the attempts yields a nil error and an
// Outcome with Succeeded == false carrying the last failure. Context
// cancellation during a backoff sleep also returns through the error value.
func Do[T any](ctx context.Context, e *Engine, p Policy, op func() (T, error)) (Outcome[T], error) {
	var out Outcome[T]

	for attempt := 0; ; attempt++ {
		v, err := op()
		out.Attempts = attempt + 1
		if err == nil {
			out.Succeeded = true
			out.Value = v
			return out, nil
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return out, err
		}

		out.LastErr = err
		if attempt >= p.MaxAttempts {
			e.logger.Error("all attempts failed",
				"attempts", out.Attempts, "error", err)
			return out, nil
		}

		d := Delay(attempt, p)
		e.logger.Warn("attempt failed, backing off",
			"attempt", out.Attempts, "delay", d, "error", err)
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(d):
		}
		out.TotalDelay += d
		e.totalRetries.Add(1)
	}
}
