// Package protocol implements the newline-delimited JSON-RPC 2.0 framing
// spoken with the MCP server process.
//
// One frame is one UTF-8 JSON object terminated by '\n':
//
//	→ {"jsonrpc":"2.0","method":"tools/list","params":{},"id":1}\n
//	← {"jsonrpc":"2.0","id":1,"result":{...}}\n
//	← {"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"..."}}\n
//
// A response carries exactly one of result / error; decoding rejects frames
// that carry neither or both.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the fixed JSON-RPC protocol version sent in every request.
const Version = "2.0"

// Decode failure sentinels. Callers distinguish an empty frame, garbage, and
// a well-formed object that is not a response.
var (
	ErrEmptyFrame  = errors.New("protocol: empty frame")
	ErrMissingBody = errors.New("protocol: response has neither result nor error")
	ErrBothBodies  = errors.New("protocol: response has both result and error")
)

// Request is one outbound call envelope.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      uint64         `json:"id"`
}

// ErrorObject is the server-supplied error envelope.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is one inbound frame after decoding. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// EncodeRequest builds one newline-terminated request frame. Params may be
// nil; it is sent as an empty object so the server never sees null params.
func EncodeRequest(method string, params map[string]any, id uint64) ([]byte, error) {
	if params == nil {
		params = map[string]any{}
	}
	frame, err := json.Marshal(Request{JSONRPC: Version, Method: method, Params: params, ID: id})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", method, err)
	}
	return append(frame, '\n'), nil
}

// DecodeResponse parses one inbound frame. The trailing newline, if still
// attached, is ignored.
func DecodeResponse(frame []byte) (*Response, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	var resp Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		return nil, fmt.Errorf("protocol: malformed frame: %w", err)
	}

	if resp.Result == nil && resp.Error == nil {
		return nil, ErrMissingBody
	}
	if resp.Result != nil && resp.Error != nil {
		return nil, ErrBothBodies
	}
	return &resp, nil
}
