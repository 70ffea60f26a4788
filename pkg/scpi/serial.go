package scpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/gotmc/prologix/driver/vcp"
)

// Serial is a Transport over a plain USB-serial port for instruments that
// speak their protocol directly on the wire (no GPIB controller in
// between). Lines are CRLF-terminated both ways.
type Serial struct {
	port   *vcp.VCP
	desc   string
	closed bool
}

// OpenSerial opens the named serial port.
func OpenSerial(port string) (*Serial, error) {
	p, err := vcp.NewVCP(port)
	if err != nil {
		return nil, fmt.Errorf("scpi: open %s: %w", port, err)
	}
	return &Serial{port: p, desc: "serial:" + port}, nil
}

// Send writes one CRLF-terminated command.
func (s *Serial) Send(cmd string) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.port.Write([]byte(cmd + "\r\n")); err != nil {
		return fmt.Errorf("scpi: %s: write: %w", s.desc, err)
	}
	// Slow firmware drops back-to-back commands without a settle delay.
	time.Sleep(50 * time.Millisecond)
	return nil
}

// Query writes cmd and reads one CRLF-terminated response line.
func (s *Serial) Query(cmd string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if _, err := s.port.Write([]byte(cmd + "\r\n")); err != nil {
		return "", fmt.Errorf("scpi: %s: write: %w", s.desc, err)
	}

	var resp []byte
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("scpi: %s: read: %w", s.desc, err)
		}
		resp = append(resp, buf[:n]...)
		if n == 0 || strings.HasSuffix(string(resp), "\n") {
			break
		}
	}
	return strings.TrimSpace(string(resp)), nil
}

// Description names the serial link.
func (s *Serial) Description() string { return s.desc }

// Close flushes and releases the port.
func (s *Serial) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.port.Flush()
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("scpi: close %s: %w", s.desc, err)
	}
	return nil
}
