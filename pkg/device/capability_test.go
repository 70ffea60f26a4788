package device

import (
	"errors"
	"testing"
)

// fakeDevice is a capability-free Device for adapter fallback tests.
type fakeDevice struct {
	kind     Kind
	channels []int
	calls    []string
	fail     error
}

func (f *fakeDevice) Info() Info      { return Info{Kind: f.kind, Model: "fake", Resource: "sim:fake"} }
func (f *fakeDevice) Channels() []int { return f.channels }
func (f *fakeDevice) Send(cmd string) error {
	f.calls = append(f.calls, "send:"+cmd)
	return f.fail
}
func (f *fakeDevice) Query(cmd string) (string, error) { return "", f.fail }
func (f *fakeDevice) Reset() error {
	f.calls = append(f.calls, "reset")
	return f.fail
}
func (f *fakeDevice) Close() error { return nil }

type fakeBulk struct {
	fakeDevice
}

func (f *fakeBulk) DisableAllOutputs() error {
	f.calls = append(f.calls, "bulk-off")
	return f.fail
}

type fakeChannelGate struct {
	fakeDevice
}

func (f *fakeChannelGate) EnableChannel(ch int, on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	f.calls = append(f.calls, "chan:"+state)
	return f.fail
}

type fakeMasterGate struct {
	fakeDevice
}

func (f *fakeMasterGate) EnableOutput(on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	f.calls = append(f.calls, "master:"+state)
	return f.fail
}

func TestDisableAllPrefersBulk(t *testing.T) {
	d := &fakeBulk{fakeDevice{kind: KindAWG, channels: []int{1, 2}}}
	if err := DisableAll(d); err != nil {
		t.Fatalf("DisableAll: %v", err)
	}
	if len(d.calls) != 1 || d.calls[0] != "bulk-off" {
		t.Errorf("calls = %v, want single bulk-off", d.calls)
	}
}

func TestDisableAllFallsBackToChannels(t *testing.T) {
	d := &fakeChannelGate{fakeDevice{kind: KindAWG, channels: []int{1, 2}}}
	if err := DisableAll(d); err != nil {
		t.Fatalf("DisableAll: %v", err)
	}
	if len(d.calls) != 2 {
		t.Errorf("calls = %v, want one per channel", d.calls)
	}
}

func TestDisableAllFallsBackToMaster(t *testing.T) {
	d := &fakeMasterGate{fakeDevice{kind: KindPSU}}
	if err := DisableAll(d); err != nil {
		t.Fatalf("DisableAll: %v", err)
	}
	if len(d.calls) != 1 || d.calls[0] != "master:off" {
		t.Errorf("calls = %v, want master:off", d.calls)
	}
}

func TestDisableAllUnsupported(t *testing.T) {
	d := &fakeDevice{kind: KindPSU}
	err := DisableAll(d)
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("DisableAll = %v, want ErrNotSupported", err)
	}
}

func TestSafeStateByKind(t *testing.T) {
	psu := &fakeMasterGate{fakeDevice{kind: KindPSU}}
	if err := SafeState(psu); err != nil {
		t.Fatalf("SafeState(psu): %v", err)
	}
	if psu.calls[0] != "master:off" {
		t.Errorf("psu calls = %v", psu.calls)
	}

	dmm := &fakeDevice{kind: KindDMM}
	if err := SafeState(dmm); err != nil {
		t.Fatalf("SafeState(dmm): %v", err)
	}
	if len(dmm.calls) != 1 || dmm.calls[0] != "reset" {
		t.Errorf("dmm calls = %v, want reset", dmm.calls)
	}
}

func TestPowerOnSkipsMeters(t *testing.T) {
	dmm := &fakeDevice{kind: KindDMM}
	if err := PowerOn(dmm); err != nil {
		t.Fatalf("PowerOn(dmm): %v", err)
	}
	if len(dmm.calls) != 0 {
		t.Errorf("dmm calls = %v, want none", dmm.calls)
	}

	awg := &fakeChannelGate{fakeDevice{kind: KindAWG, channels: []int{1, 2}}}
	if err := PowerOn(awg); err != nil {
		t.Fatalf("PowerOn(awg): %v", err)
	}
	if len(awg.calls) != 2 {
		t.Errorf("awg calls = %v", awg.calls)
	}
}
