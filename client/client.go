// Package client implements the resilient MCP monitor client: one spawned
// server process, single-flight JSON-RPC exchanges over its stdio, retry with
// backoff, a short-lived tool cache, and optional rate limiting.
//
// One Client is meant to be driven by one owner at a time; the id counter and
// the tool cache are not built for concurrent callers sharing a Client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mcpmon/cache"
	"mcpmon/fault"
	"mcpmon/metrics"
	"mcpmon/retry"
	"mcpmon/transport"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultToolCacheTTL = time.Minute
)

// Options configure a Client. Command is the only required field.
type Options struct {
	// Command is the server command line, split on whitespace
	// (e.g. "python -m mcp_k3s_monitor"). Args are appended verbatim.
	Command string
	Args    []string

	// Timeout bounds each response read. Default 30s.
	Timeout time.Duration

	// ToolCacheTTL bounds how long a tools/list result is reused. Default 1m.
	ToolCacheTTL time.Duration

	// Policy governs retries. Nil means retry.DefaultPolicy. The retryable
	// predicate is installed by the client; any predicate set here is
	// overwritten.
	Policy *retry.Policy

	// TransientCode reports whether a remote error code is worth retrying.
	// Nil means DefaultTransientCode.
	TransientCode func(code int) bool

	// RateLimit throttles calls to this many per second when positive.
	// RateBurst defaults to 1 when the limit is set.
	RateLimit float64
	RateBurst int

	Logger *slog.Logger
}

// Tool is one capability advertised by the server.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// Client is the facade callers talk to. It exclusively owns one transport,
// one exchange id counter, one tool cache, and one retry engine.
type Client struct {
	transport *transport.Transport
	exch      exchange
	tools     cache.Cache[[]Tool]
	engine    *retry.Engine
	policy    retry.Policy
	timeout   time.Duration
	cacheTTL  time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New validates opts and builds a client. The server process is not spawned
// until Connect.
func New(opts Options) (*Client, error) {
	argv := append(strings.Fields(opts.Command), opts.Args...)
	if len(argv) == 0 {
		return nil, errors.New("client: server command required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ToolCacheTTL <= 0 {
		opts.ToolCacheTTL = defaultToolCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := retry.DefaultPolicy()
	if opts.Policy != nil {
		base = *opts.Policy
	}
	transient := opts.TransientCode
	if transient == nil {
		transient = DefaultTransientCode
	}
	base.Retryable = func(err error) bool { return retryable(err, transient) }
	policy, err := retry.NewPolicy(base)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	tr := transport.New(argv[0], argv[1:]...)
	tr.SetLogger(logger)

	return &Client{
		transport: tr,
		exch:      exchange{wire: tr},
		engine:    retry.NewEngine(logger),
		policy:    policy,
		timeout:   opts.Timeout,
		cacheTTL:  opts.ToolCacheTTL,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// Connect spawns the MCP server process. A failed spawn is not retried: a
// process that cannot start will not start on the second try either.
func (c *Client) Connect() error { return c.transport.Connect() }

// Close terminates the server process. Safe to call more than once.
func (c *Client) Close() error { return c.transport.Disconnect() }

// IsConnected reports whether the server process is alive.
func (c *Client) IsConnected() bool { return c.transport.IsAlive() }

// TotalRetries reports retries performed across all calls since the last
// ResetStats.
func (c *Client) TotalRetries() int64 { return c.engine.TotalRetries() }

// ResetStats zeroes the retry counter.
func (c *Client) ResetStats() { c.engine.ResetStats() }

// DefaultTransientCode classifies JSON-RPC error codes: parse, invalid
// request, method-not-found, and invalid-params errors are permanent;
// everything else (server errors, internal errors) is presumed transient.
func DefaultTransientCode(code int) bool {
	switch code {
	case -32700, -32600, -32601, -32602:
		return false
	}
	return true
}

// retryable is the failure classification the retry engine consults.
// Timeouts and transient remote errors are worth another attempt; a dead or
// corrupted channel is not — retrying cannot heal it mid-call.
func retryable(err error, transient func(int) bool) bool {
	kind, ok := fault.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case fault.Timeout:
		return true
	case fault.Remote:
		return transient(fault.CodeOf(err))
	default: // NotConnected, Protocol
		return false
	}
}

// Invoke performs one retry-wrapped call of an arbitrary method. The named
// operations below all funnel through here.
func (c *Client) Invoke(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	metrics.RPCCallsTotal.WithLabelValues(method).Inc()

	out, err := retry.Do(ctx, c.engine, c.policy, func() (json.RawMessage, error) {
		return c.exch.call(method, params, c.timeout)
	})
	metrics.RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if retried := out.Attempts - 1; retried > 0 {
		metrics.RetriesTotal.Add(float64(retried))
	}

	if err != nil {
		// Non-retryable failure or cancelled backoff: no exhaustion wrapper.
		metrics.RPCErrorsTotal.WithLabelValues(method, errKind(err)).Inc()
		return nil, fmt.Errorf("client: %s: %w", method, err)
	}
	if !out.Succeeded {
		metrics.RPCErrorsTotal.WithLabelValues(method, errKind(out.LastErr)).Inc()
		c.logger.Error("call failed after retries",
			"method", method, "attempts", out.Attempts, "error", out.LastErr)
		return nil, fmt.Errorf("client: %s: %w after %d attempts: %w",
			method, retry.ErrExhausted, out.Attempts, out.LastErr)
	}

	c.logger.Debug("call succeeded",
		"method", method, "attempts", out.Attempts, "duration", time.Since(start))
	return out.Value, nil
}

func errKind(err error) string {
	if kind, ok := fault.KindOf(err); ok {
		return kind.String()
	}
	return "other"
}
