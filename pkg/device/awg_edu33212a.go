package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// edu33212aForms is the closed set of waveform tokens the EDU33212A
// accepts.
var edu33212aForms = map[string]bool{
	"SIN": true, "SQU": true, "TRI": true, "RAMP": true,
	"PULS": true, "PRBS": true, "NOIS": true, "DC": true,
}

// EDU33212A drives a Keysight EDU33212A two-channel waveform generator.
type EDU33212A struct {
	SCPI
}

// NewEDU33212A builds the driver over tr.
func NewEDU33212A(tr scpi.Transport) *EDU33212A {
	return &EDU33212A{SCPI: NewSCPI(KindAWG, "EDU33212A", tr)}
}

// Channels lists the two outputs.
func (d *EDU33212A) Channels() []int { return []int{1, 2} }

func (d *EDU33212A) checkChannel(ch int) error {
	if ch != 1 && ch != 2 {
		return fmt.Errorf("device: EDU33212A: channel %d out of range (1-2)", ch)
	}
	return nil
}

// EnableChannel switches one output connector.
func (d *EDU33212A) EnableChannel(ch int, on bool) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("OUTPut%d %s", ch, onOff(on)))
}

// DisableAllOutputs switches both outputs off.
func (d *EDU33212A) DisableAllOutputs() error {
	for _, ch := range d.Channels() {
		if err := d.EnableChannel(ch, false); err != nil {
			return err
		}
	}
	return nil
}

// SetWaveform selects the output function (SIN, SQU, TRI, RAMP, PULS,
// PRBS, NOIS, DC).
func (d *EDU33212A) SetWaveform(ch int, form string) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if !edu33212aForms[form] {
		return fmt.Errorf("device: EDU33212A: unsupported waveform %q", form)
	}
	return d.Send(fmt.Sprintf("SOURce%d:FUNCtion %s", ch, form))
}

// SetFrequency programs the output frequency in Hz.
func (d *EDU33212A) SetFrequency(ch int, hz float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:FREQuency %g", ch, hz))
}

// SetAmplitude programs the peak-to-peak amplitude in volts.
func (d *EDU33212A) SetAmplitude(ch int, vpp float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:VOLTage %g", ch, vpp))
}

// SetOffset programs the DC offset in volts.
func (d *EDU33212A) SetOffset(ch int, volts float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:VOLTage:OFFSet %g", ch, volts))
}

// SetDutyCycle programs the square-wave duty cycle in percent.
func (d *EDU33212A) SetDutyCycle(ch int, percent float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:FUNCtion:SQUare:DCYCle %g", ch, percent))
}

// SetRampSymmetry programs the ramp symmetry in percent.
func (d *EDU33212A) SetRampSymmetry(ch int, percent float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:FUNCtion:RAMP:SYMMetry %g", ch, percent))
}

// SetPhase programs the phase in degrees.
func (d *EDU33212A) SetPhase(ch int, degrees float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SOURce%d:PHASe %g", ch, degrees))
}

// SetSyncOutput switches the rear sync connector.
func (d *EDU33212A) SetSyncOutput(on bool) error {
	return d.Send("OUTPut:SYNC " + onOff(on))
}
