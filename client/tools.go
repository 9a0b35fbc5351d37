package client

import (
	"context"
	"encoding/json"

	"mcpmon/fault"
)

// Ping checks that the server answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Invoke(ctx, "ping", nil)
	return err
}

// ListTools returns the server's advertised tools. Results are cached for
// the configured TTL; set refresh to force a reload.
func (c *Client) ListTools(ctx context.Context, refresh bool) ([]Tool, error) {
	if refresh {
		c.tools.Invalidate()
	}
	return c.tools.GetOrRefresh(c.cacheTTL, func() ([]Tool, error) {
		raw, err := c.Invoke(ctx, "tools/list", nil)
		if err != nil {
			return nil, err
		}
		var body struct {
			Tools []Tool `json:"tools"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fault.Wrap(fault.Protocol, err, "tools/list result")
		}
		return body.Tools, nil
	})
}

// CallTool invokes one tool with its arguments and returns the raw result.
// Interpreting the result is the caller's business.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	return c.Invoke(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
}
