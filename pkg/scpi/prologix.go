package scpi

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotmc/prologix"
	"github.com/gotmc/prologix/driver/vcp"
)

// Prologix is a Transport to one GPIB instrument behind a Prologix
// GPIB-USB controller on a serial port.
type Prologix struct {
	port   *vcp.VCP
	gpib   *prologix.Controller
	desc   string
	closed bool
}

// OpenPrologix opens the controller on the named serial port and addresses
// the instrument at addr.
func OpenPrologix(port string, addr int) (*Prologix, error) {
	serial, err := vcp.NewVCP(port)
	if err != nil {
		return nil, fmt.Errorf("scpi: open %s: %w", port, err)
	}

	gpib, err := prologix.NewController(serial, addr, false)
	if err != nil {
		serial.Close()
		return nil, fmt.Errorf("scpi: prologix on %s: %w", port, err)
	}

	return &Prologix{
		port: serial,
		gpib: gpib,
		desc: fmt.Sprintf("gpib:%s:%d", port, addr),
	}, nil
}

// Send writes one program message to the addressed instrument.
func (p *Prologix) Send(cmd string) error {
	if p.closed {
		return ErrClosed
	}
	if err := p.gpib.Command(cmd); err != nil {
		return fmt.Errorf("scpi: %s: %w", p.desc, err)
	}
	return nil
}

// Query writes cmd and reads the response. A bare EOF after data is the
// controller's normal end-of-read.
func (p *Prologix) Query(cmd string) (string, error) {
	if p.closed {
		return "", ErrClosed
	}
	resp, err := p.gpib.Query(cmd)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("scpi: %s: query %q: %w", p.desc, cmd, err)
	}
	return strings.TrimSpace(resp), nil
}

// Description names the GPIB link.
func (p *Prologix) Description() string { return p.desc }

// Close returns the instrument to local control and releases the port.
func (p *Prologix) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	// Best effort: return the instrument to front-panel control.
	_ = p.gpib.FrontPanel(true)
	_ = p.port.Flush()
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("scpi: close %s: %w", p.desc, err)
	}
	return nil
}
