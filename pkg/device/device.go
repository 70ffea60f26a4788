// Package device defines the instrument abstraction the shell works
// against: a minimal Device interface, optional capability interfaces that
// drivers opt into, and per-model drivers speaking SCPI (or a vendor
// protocol) over a scpi.Transport.
package device

import "errors"

// ErrNotSupported is returned when a device lacks the capability an
// operation needs.
var ErrNotSupported = errors.New("device: operation not supported")

// Kind is an instrument role.
type Kind string

const (
	KindPSU   Kind = "psu"
	KindAWG   Kind = "awg"
	KindDMM   Kind = "dmm"
	KindScope Kind = "scope"
)

// Info identifies a connected instrument.
type Info struct {
	Kind     Kind
	Model    string
	Resource string // transport description, e.g. "usb:2a8d:8d18" or "gpib:/dev/ttyUSB0:22"
}

// Device is the surface every driver exposes. Channels lists the valid
// channel numbers in ascending order; a device without channel addressing
// returns nil.
type Device interface {
	Info() Info
	Channels() []int
	Send(cmd string) error
	Query(cmd string) (string, error)
	Reset() error
	Close() error
}
