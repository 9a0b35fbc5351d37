// Package fault defines the closed failure taxonomy for the MCP client.
//
// Every failure the transport, codec, or exchange can produce carries one of
// four kinds. Keeping the set closed lets the retry predicate switch over it
// exhaustively instead of sniffing error strings.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a client failure.
type Kind int

const (
	// NotConnected — operation attempted on a dead or never-started transport.
	NotConnected Kind = iota
	// Timeout — no response frame arrived within the deadline.
	Timeout
	// Protocol — malformed frame, missing result/error, or id mismatch.
	Protocol
	// Remote — a well-formed error envelope from the server side.
	Remote
)

func (k Kind) String() string {
	switch k {
	case NotConnected:
		return "not_connected"
	case Timeout:
		return "timeout"
	case Protocol:
		return "protocol"
	case Remote:
		return "remote"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified client failure. Code is meaningful only for Remote,
// where it holds the server-supplied JSON-RPC error code.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Kind == Remote {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a failure of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing it.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// RemoteError builds a Remote failure from a server error envelope.
func RemoteError(code int, message string) *Error {
	return &Error{Kind: Remote, Code: code, Message: message}
}

// KindOf extracts the kind from err. ok is false when err is not a
// classified client failure (and therefore outside the taxonomy).
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// CodeOf returns the remote error code carried by err, or 0 if err is not a
// Remote failure.
func CodeOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == Remote {
		return fe.Code
	}
	return 0
}
