package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	frame, err := EncodeRequest("tools/call", map[string]any{"name": "list_pods"}, 7)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	if !bytes.HasSuffix(frame, []byte("\n")) {
		t.Error("frame must be newline-terminated")
	}

	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if req.JSONRPC != Version {
		t.Errorf("jsonrpc: got %q, want %q", req.JSONRPC, Version)
	}
	if req.Method != "tools/call" {
		t.Errorf("method: got %q, want tools/call", req.Method)
	}
	if req.ID != 7 {
		t.Errorf("id: got %d, want 7", req.ID)
	}
	if req.Params["name"] != "list_pods" {
		t.Errorf("params: got %v", req.Params)
	}
}

func TestEncodeRequestNilParams(t *testing.T) {
	frame, err := EncodeRequest("ping", nil, 1)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	// nil params must be serialized as {}, never null.
	if !bytes.Contains(frame, []byte(`"params":{}`)) {
		t.Errorf("expected empty params object, got %s", frame)
	}
}

func TestDecodeResult(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":3,"result":"pong"}` + "\n"))
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.ID != 3 {
		t.Errorf("id: got %d, want 3", resp.ID)
	}
	if resp.Error != nil {
		t.Errorf("unexpected error envelope: %+v", resp.Error)
	}
	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil || result != "pong" {
		t.Errorf("result: got %s (%v), want pong", resp.Result, err)
	}
}

func TestDecodeErrorEnvelope(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"method not found"}}`))
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected error envelope")
	}
	if resp.Error.Code != -32601 || resp.Error.Message != "method not found" {
		t.Errorf("error envelope: %+v", resp.Error)
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, []byte("\n"), []byte("   ")} {
		if _, err := DecodeResponse(frame); !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("DecodeResponse(%q): got %v, want ErrEmptyFrame", frame, err)
		}
	}
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":`))
	if err == nil || errors.Is(err, ErrEmptyFrame) || errors.Is(err, ErrMissingBody) {
		t.Errorf("malformed frame must fail distinctly, got %v", err)
	}
}

func TestDecodeMissingBody(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":5}`))
	if !errors.Is(err, ErrMissingBody) {
		t.Errorf("got %v, want ErrMissingBody", err)
	}
}

func TestDecodeBothBodies(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":5,"result":1,"error":{"code":1,"message":"x"}}`))
	if !errors.Is(err, ErrBothBodies) {
		t.Errorf("got %v, want ErrBothBodies", err)
	}
}

func TestDecodeNullResultIsPresent(t *testing.T) {
	// result:null is a legal success envelope — the key is present.
	resp, err := DecodeResponse([]byte(`{"jsonrpc":"2.0","id":6,"result":null}`))
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if string(resp.Result) != "null" {
		t.Errorf("result: got %s, want null", resp.Result)
	}
}
