package oerror

import "errors"

var (
	// ErrUnsupportedProtocol is returned by the codec for sessions on a protocol version it has no packet
	// table for.
	ErrUnsupportedProtocol = errors.New("unsupported protocol version")
	// ErrMalformedVarInt is returned when a variable length integer is longer than 5 bytes.
	ErrMalformedVarInt = errors.New("varint is too big")
	// ErrUnexpectedPacket is returned when a remote server answers with a packet other than expected.
	ErrUnexpectedPacket = errors.New("unexpected packet")
	// ErrMalformedStatus is returned when a status response is missing fields or exceeds its size limits.
	ErrMalformedStatus = errors.New("malformed status response")
	// ErrNotFound is returned when a profile or texture could not be found.
	ErrNotFound = errors.New("not found")
)
