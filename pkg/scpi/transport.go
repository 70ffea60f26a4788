// Package scpi provides the byte-level links to instruments: USB-TMC over
// gousb, GPIB behind a Prologix USB-serial controller, and an in-memory
// simulated transport for tests and the --sim bench.
package scpi

import "errors"

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = errors.New("scpi: transport closed")

// Transport is one command/response link to an instrument. Send writes a
// single program message; Query writes one and returns the trimmed response.
type Transport interface {
	// Send writes cmd, adding whatever line termination the link needs.
	Send(cmd string) error
	// Query writes cmd and reads one response, trimmed of termination.
	Query(cmd string) (string, error)
	// Description names the link for status output, e.g. "usb:2a8d:8d18".
	Description() string
	Close() error
}
