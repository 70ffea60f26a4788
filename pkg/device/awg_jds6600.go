package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// jds6600Waves maps canonical waveform tokens to the JDS6600's numeric
// codes. Triangle and pulse codes are swapped relative to the vendor
// manual; the hardware has them this way.
var jds6600Waves = map[string]int{
	"SIN":  0,
	"SQU":  1,
	"PULS": 2,
	"TRI":  3,
	"DC":   4,
	"NOIS": 5,
	"RAMP": 6,
}

// JDS6600 drives a JDS6600/Seesii dual-channel DDS generator. The protocol
// is not SCPI: ASCII register writes of the form :wNN=DATA. over USB
// serial, with :rNN= reads. Both output relays switch through a single
// register, so the driver tracks per-channel state.
type JDS6600 struct {
	info Info
	tr   scpi.Transport

	out [2]bool
}

// NewJDS6600 builds the driver over tr.
func NewJDS6600(tr scpi.Transport) *JDS6600 {
	return &JDS6600{
		info: Info{Kind: KindAWG, Model: "JDS6600", Resource: tr.Description()},
		tr:   tr,
	}
}

// Info returns the instrument identity.
func (d *JDS6600) Info() Info { return d.info }

// Channels lists the two outputs.
func (d *JDS6600) Channels() []int { return []int{1, 2} }

// Send writes one raw protocol command.
func (d *JDS6600) Send(cmd string) error {
	if err := d.tr.Send(cmd); err != nil {
		return fmt.Errorf("device: JDS6600: %w", err)
	}
	return nil
}

// Query writes one raw read command and returns the response.
func (d *JDS6600) Query(cmd string) (string, error) {
	resp, err := d.tr.Query(cmd)
	if err != nil {
		return "", fmt.Errorf("device: JDS6600: %w", err)
	}
	return resp, nil
}

func (d *JDS6600) checkChannel(ch int) error {
	if ch != 1 && ch != 2 {
		return fmt.Errorf("device: JDS6600: channel %d out of range (1-2)", ch)
	}
	return nil
}

// register picks the per-channel register pair base: ch1 register for
// channel 1, ch1+1 for channel 2.
func regFor(ch, ch1Reg int) int {
	if ch == 2 {
		return ch1Reg + 1
	}
	return ch1Reg
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// writeOutputs programs both relays from the tracked state.
func (d *JDS6600) writeOutputs() error {
	return d.Send(fmt.Sprintf(":w20=%d,%d.", boolInt(d.out[0]), boolInt(d.out[1])))
}

// EnableChannel switches one output, reprogramming both relays since the
// hardware sets them together.
func (d *JDS6600) EnableChannel(ch int, on bool) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	d.out[ch-1] = on
	return d.writeOutputs()
}

// DisableAllOutputs opens both relays.
func (d *JDS6600) DisableAllOutputs() error {
	d.out[0], d.out[1] = false, false
	return d.writeOutputs()
}

// EnableAllOutputs closes both relays.
func (d *JDS6600) EnableAllOutputs() error {
	d.out[0], d.out[1] = true, true
	return d.writeOutputs()
}

// SetWaveform selects the waveform (SIN, SQU, TRI, RAMP, PULS, NOIS, DC).
func (d *JDS6600) SetWaveform(ch int, form string) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	code, ok := jds6600Waves[form]
	if !ok {
		return fmt.Errorf("device: JDS6600: unsupported waveform %q", form)
	}
	return d.Send(fmt.Sprintf(":w%d=%d.", regFor(ch, 21), code))
}

// SetFrequency programs the frequency. Values below 20 MHz use the 0.01 Hz
// resolution unit; above that the 0.01 MHz unit.
func (d *JDS6600) SetFrequency(ch int, hz float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	value, unit := int(hz*100), 0
	if hz >= 20e6 {
		value, unit = int(hz/10_000), 2
	}
	return d.Send(fmt.Sprintf(":w%d=%d,%d.", regFor(ch, 23), value, unit))
}

// SetAmplitude programs the peak-to-peak amplitude in 1 mV steps.
func (d *JDS6600) SetAmplitude(ch int, vpp float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf(":w%d=%d.", regFor(ch, 25), int(vpp*1000)))
}

// SetOffset programs the DC offset. The register is unsigned with 1000 at
// zero volts and 0.01 V per count, clamped to the hardware range.
func (d *JDS6600) SetOffset(ch int, volts float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	value := int((volts + 10.0) * 100)
	if value < 0 {
		value = 0
	}
	if value > 1999 {
		value = 1999
	}
	return d.Send(fmt.Sprintf(":w%d=%d.", regFor(ch, 27), value))
}

// SetDutyCycle programs the duty cycle in 0.1% steps.
func (d *JDS6600) SetDutyCycle(ch int, percent float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if percent < 0.1 || percent > 99.9 {
		return fmt.Errorf("device: JDS6600: duty cycle %.1f%% out of range (0.1-99.9)", percent)
	}
	return d.Send(fmt.Sprintf(":w%d=%d.", regFor(ch, 29), int(percent*10)))
}

// SetPhase programs the phase in 0.1 degree steps.
func (d *JDS6600) SetPhase(ch int, degrees float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if degrees < 0 || degrees >= 360 {
		return fmt.Errorf("device: JDS6600: phase %.1f out of range (0-360)", degrees)
	}
	return d.Send(fmt.Sprintf(":w%d=%d.", regFor(ch, 31), int(degrees*10)))
}

// Reset has no *RST equivalent; parking both outputs is the closest thing.
func (d *JDS6600) Reset() error {
	return d.DisableAllOutputs()
}

// Close parks the outputs and releases the link.
func (d *JDS6600) Close() error {
	_ = d.DisableAllOutputs()
	return d.tr.Close()
}
