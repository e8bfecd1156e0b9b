package wifi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transport failures. Larger values are more
// specific and take priority when several apply.
type ErrorKind int

const (
	// CommandError indicates a setup, join or connect command failed.
	// The connect sequence may be retried.
	CommandError ErrorKind = iota
	// InitError indicates the module did not answer the handshake.
	// Recovery requires a module reset.
	InitError
	// TransmitError indicates an outbound message was not sent.
	TransmitError
	// ReceiveError indicates inbound framing failed; the byte stream may
	// be desynchronized and a reset is preferred.
	ReceiveError
)

var errorKindNames = map[ErrorKind]string{
	CommandError:  "command",
	InitError:     "init",
	TransmitError: "transmit",
	ReceiveError:  "receive",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	// ErrNoResponse indicates no success or fail token arrived in time.
	ErrNoResponse = errors.New("no response")
	// ErrRejected indicates the module answered with a fail token.
	ErrRejected = errors.New("rejected")
	// ErrNoPrompt indicates the send-ready prompt did not arrive.
	ErrNoPrompt = errors.New("no send prompt")
	// ErrMalformedFrame indicates an unparsable frame header.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrFrameTimeout indicates a frame was not completed in time.
	ErrFrameTimeout = errors.New("frame timeout")
	// ErrDegraded indicates messages were dropped because a previous
	// receive error left the link unreliable.
	ErrDegraded = errors.New("link degraded by receive error")
)

// Error is a categorized transport failure.
type Error struct {
	Kind    ErrorKind
	Command string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("wifi %s error: %q: %v", e.Kind, e.Command, e.Err)
	}
	return fmt.Sprintf("wifi %s error: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
