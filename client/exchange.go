package client

import (
	"encoding/json"
	"time"

	"mcpmon/fault"
	"mcpmon/protocol"
)

// Wire is the slice of the transport the exchange needs. Satisfied by
// *transport.Transport.
type Wire interface {
	IsAlive() bool
	WriteLine(frame []byte) error
	ReadLine(timeout time.Duration) ([]byte, error)
}

// exchange performs single-flight request/response round trips over a wire.
// Request ids increase strictly from 1 for the lifetime of the owning client
// and are never reused.
type exchange struct {
	wire   Wire
	nextID uint64
}

// call performs one blocking round trip: assign id, encode, write, read with
// deadline, decode, check id, unwrap the envelope.
//
// call never retries; that is the engine's job one layer up. Because at most
// one request is ever outstanding, the id comparison is a channel-integrity
// check, not a correlation table.
func (e *exchange) call(method string, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	if !e.wire.IsAlive() {
		return nil, fault.New(fault.NotConnected, "not connected to mcp server")
	}

	e.nextID++
	id := e.nextID

	frame, err := protocol.EncodeRequest(method, params, id)
	if err != nil {
		return nil, fault.Wrap(fault.Protocol, err, "encode request")
	}
	if err := e.wire.WriteLine(frame); err != nil {
		return nil, err
	}

	reply, err := e.wire.ReadLine(timeout)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.DecodeResponse(reply)
	if err != nil {
		return nil, fault.Wrap(fault.Protocol, err, "decode response")
	}
	if resp.ID != id {
		return nil, fault.New(fault.Protocol, "response id %d does not match request id %d", resp.ID, id)
	}
	if resp.Error != nil {
		return nil, fault.RemoteError(resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}
