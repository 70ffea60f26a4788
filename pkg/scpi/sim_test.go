package scpi

import (
	"errors"
	"testing"
)

func TestSimStubAndDefaults(t *testing.T) {
	s := NewSim("ACME,MODEL1,SN1,1.0")
	s.Stub("MEAS:VOLT?", "5.01")

	if got, _ := s.Query("*IDN?"); got != "ACME,MODEL1,SN1,1.0" {
		t.Errorf("*IDN? = %q", got)
	}
	if got, _ := s.Query("MEAS:VOLT?"); got != "5.01" {
		t.Errorf("stubbed query = %q", got)
	}
	if got, _ := s.Query("SOMETHING:ELSE?"); got != "0" {
		t.Errorf("default query = %q, want \"0\"", got)
	}

	if err := s.Send("OUTP ON"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := s.Sent()
	if len(sent) != 4 || sent[3] != "OUTP ON" {
		t.Errorf("Sent() = %v", sent)
	}
}

func TestSimOnQueryHook(t *testing.T) {
	s := NewSim("X")
	s.OnQuery = func(cmd string) (string, bool) {
		if cmd == "READ?" {
			return "1.25", true
		}
		return "", false
	}
	if got, _ := s.Query("READ?"); got != "1.25" {
		t.Errorf("hooked query = %q", got)
	}
}

func TestSimFailure(t *testing.T) {
	s := NewSim("X")
	boom := errors.New("boom")
	s.FailWith(boom)
	if err := s.Send("CMD"); !errors.Is(err, boom) {
		t.Errorf("Send err = %v", err)
	}
	if _, err := s.Query("Q?"); !errors.Is(err, boom) {
		t.Errorf("Query err = %v", err)
	}
	s.FailWith(nil)
	if err := s.Send("CMD"); err != nil {
		t.Errorf("Send after clearing fault: %v", err)
	}
}

func TestSimClosed(t *testing.T) {
	s := NewSim("X")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Send("CMD"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after close = %v, want ErrClosed", err)
	}
}
