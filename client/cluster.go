package client

import (
	"context"
	"encoding/json"
)

// Cluster conveniences over CallTool, mirroring the monitoring server's tool
// surface. The shape of what comes back is the server's business; the client
// hands it over untouched.

// GetClusterHealth reports overall cluster health.
func (c *Client) GetClusterHealth(ctx context.Context) (json.RawMessage, error) {
	return c.CallTool(ctx, "get_cluster_health", nil)
}

// ListPods lists pods, optionally scoped to a namespace and label selector.
func (c *Client) ListPods(ctx context.Context, namespace, labelSelector string) (json.RawMessage, error) {
	args := map[string]any{}
	if namespace != "" {
		args["namespace"] = namespace
	}
	if labelSelector != "" {
		args["label_selector"] = labelSelector
	}
	return c.CallTool(ctx, "list_pods", args)
}

// GetPodLogs fetches the last lines of a pod's log.
func (c *Client) GetPodLogs(ctx context.Context, pod, namespace string, lines int) (json.RawMessage, error) {
	if lines <= 0 {
		lines = 50
	}
	return c.CallTool(ctx, "get_pod_logs", map[string]any{
		"pod_name":  pod,
		"namespace": namespace,
		"lines":     lines,
	})
}

// ListDeployments lists deployments, optionally scoped to a namespace.
func (c *Client) ListDeployments(ctx context.Context, namespace string) (json.RawMessage, error) {
	args := map[string]any{}
	if namespace != "" {
		args["namespace"] = namespace
	}
	return c.CallTool(ctx, "list_deployments", args)
}

// ListNodes lists cluster nodes.
func (c *Client) ListNodes(ctx context.Context) (json.RawMessage, error) {
	return c.CallTool(ctx, "list_nodes", nil)
}

// ListNamespaces lists all namespaces.
func (c *Client) ListNamespaces(ctx context.Context) (json.RawMessage, error) {
	return c.CallTool(ctx, "list_namespaces", nil)
}
