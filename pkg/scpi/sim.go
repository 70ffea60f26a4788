package scpi

import (
	"fmt"
	"strings"
	"sync"
)

// Sim is an in-memory Transport for tests and the simulated bench. Queries
// answer from stubbed responses, then from the OnQuery hook, then with a
// default. Every command sent is recorded.
type Sim struct {
	mu        sync.Mutex
	idn       string
	responses map[string]string
	sent      []string
	closed    bool
	err       error

	// OnQuery, when set, answers queries the stub table misses.
	OnQuery func(cmd string) (string, bool)
}

// NewSim builds a simulated transport answering *IDN? with idn.
func NewSim(idn string) *Sim {
	return &Sim{idn: idn, responses: make(map[string]string)}
}

// Stub registers a fixed response for an exact query string.
func (s *Sim) Stub(cmd, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cmd] = response
}

// FailWith makes all subsequent operations return err. Passing nil clears
// the fault.
func (s *Sim) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Send records cmd.
func (s *Sim) Send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, cmd)
	return nil
}

// Query records cmd and answers it. Unmatched queries return "0" so
// drivers that parse numbers keep working without per-test stubbing.
func (s *Sim) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, cmd)

	if resp, ok := s.responses[cmd]; ok {
		return resp, nil
	}
	if s.OnQuery != nil {
		if resp, ok := s.OnQuery(cmd); ok {
			return resp, nil
		}
	}
	if strings.EqualFold(cmd, "*IDN?") {
		return s.idn, nil
	}
	return "0", nil
}

// Description names the simulated link.
func (s *Sim) Description() string {
	return fmt.Sprintf("sim:%s", s.idn)
}

// Close marks the transport closed; further operations fail.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

// Sent returns a copy of every command and query written so far.
func (s *Sim) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

// Reset clears the recorded command history.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
