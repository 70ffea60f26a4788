package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// SCPI is the behavior shared by SCPI instruments: identity, raw access and
// the *RST/*CLS reset sequence. Drivers embed it and add model commands.
type SCPI struct {
	info Info
	tr   scpi.Transport
}

// NewSCPI wraps a transport with instrument identity.
func NewSCPI(kind Kind, model string, tr scpi.Transport) SCPI {
	return SCPI{
		info: Info{Kind: kind, Model: model, Resource: tr.Description()},
		tr:   tr,
	}
}

// Info returns the instrument identity.
func (s *SCPI) Info() Info { return s.info }

// Send writes one raw command.
func (s *SCPI) Send(cmd string) error {
	if err := s.tr.Send(cmd); err != nil {
		return fmt.Errorf("device: %s: %w", s.info.Model, err)
	}
	return nil
}

// Query writes one raw command and returns the response.
func (s *SCPI) Query(cmd string) (string, error) {
	resp, err := s.tr.Query(cmd)
	if err != nil {
		return "", fmt.Errorf("device: %s: %w", s.info.Model, err)
	}
	return resp, nil
}

// QueryFloat queries and parses a single numeric response.
func (s *SCPI) QueryFloat(cmd string) (float64, error) {
	resp, err := s.Query(cmd)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, fmt.Errorf("device: %s: %s returned %q: %w", s.info.Model, cmd, resp, err)
	}
	return v, nil
}

// IDN returns the instrument's identification string.
func (s *SCPI) IDN() (string, error) {
	return s.Query("*IDN?")
}

// Reset issues *RST followed by *CLS.
func (s *SCPI) Reset() error {
	if err := s.Send("*RST"); err != nil {
		return err
	}
	return s.Send("*CLS")
}

// Close releases the underlying transport.
func (s *SCPI) Close() error {
	return s.tr.Close()
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
