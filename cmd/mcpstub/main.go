// Command mcpstub is a stand-in MCP server for exercising the client by
// hand. It speaks newline-delimited JSON-RPC 2.0 on stdin/stdout and serves
// a handful of canned tools:
//
//	k3smon -config config.yaml tools        # with mcp.command: "mcpstub"
//
// Request dispatch mirrors a real server: unknown methods get -32601,
// unknown tools -32602, unparseable frames -32700.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

type request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      uint64         `json:"id"`
}

type errorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uint64       `json:"id"`
	Result  any          `json:"result,omitempty"`
	Error   *errorObject `json:"error,omitempty"`
}

// maxFrameSize caps a single request frame. The default bufio.Scanner token
// limit is 64KB, which real tool calls (log dumps, large manifests) exceed.
const maxFrameSize = 4 * 1024 * 1024

var toolList = []map[string]any{
	{"name": "echo", "description": "echoes its arguments back"},
	{"name": "get_cluster_health", "description": "canned healthy cluster"},
	{"name": "list_pods", "description": "canned pod listing"},
}

func main() {
	out := bufio.NewWriter(os.Stdout)
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			reply(out, response{JSONRPC: "2.0", Error: &errorObject{Code: -32700, Message: "parse error"}})
			continue
		}
		reply(out, dispatch(req))
	}
}

func dispatch(req request) response {
	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "ping":
		resp.Result = "pong"
	case "tools/list":
		resp.Result = map[string]any{"tools": toolList}
	case "tools/call":
		name, _ := req.Params["name"].(string)
		args, _ := req.Params["arguments"].(map[string]any)
		result, err := callTool(name, args)
		if err != nil {
			resp.Error = err
		} else {
			resp.Result = result
		}
	default:
		resp.Error = &errorObject{Code: -32601, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
	return resp
}

func callTool(name string, args map[string]any) (any, *errorObject) {
	switch name {
	case "echo":
		return map[string]any{"echo": args}, nil
	case "get_cluster_health":
		return map[string]any{
			"status":      "healthy",
			"nodes_ready": 3,
			"nodes_total": 3,
		}, nil
	case "list_pods":
		return map[string]any{"pods": []map[string]any{
			{"name": "coredns-6799fbcd5-x7k2m", "namespace": "kube-system", "status": "Running"},
			{"name": "traefik-57b79cf995-9qmzn", "namespace": "kube-system", "status": "Running"},
		}}, nil
	}
	return nil, &errorObject{Code: -32602, Message: fmt.Sprintf("unknown tool %q", name)}
}

func reply(out *bufio.Writer, resp response) {
	frame, err := json.Marshal(resp)
	if err != nil {
		return
	}
	out.Write(append(frame, '\n'))
	out.Flush()
}
