package device

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// MPS6010H drives a Matrix MPS-6010H single-output bench supply. The
// protocol is SCPI-ish but flat: VOLT/CURR/OUTP plus MEAS queries, with a
// REM:ON handshake to take remote control.
type MPS6010H struct {
	SCPI
}

// NewMPS6010H builds the driver over tr and puts the supply in remote mode.
func NewMPS6010H(tr scpi.Transport) (*MPS6010H, error) {
	d := &MPS6010H{SCPI: NewSCPI(KindPSU, "MPS-6010H", tr)}
	if err := d.Send("REM:ON"); err != nil {
		return nil, err
	}
	return d, nil
}

// Channels lists the single output.
func (d *MPS6010H) Channels() []int { return []int{1} }

func (d *MPS6010H) checkChannel(ch int) error {
	if ch != 1 {
		return fmt.Errorf("device: MPS-6010H: channel %d out of range (single output)", ch)
	}
	return nil
}

// EnableOutput switches the output relay.
func (d *MPS6010H) EnableOutput(on bool) error {
	return d.Send("OUTP " + onOff(on))
}

// SetVoltage programs the output voltage.
func (d *MPS6010H) SetVoltage(voltage float64) error {
	return d.Send(fmt.Sprintf("VOLT %.3f", voltage))
}

// SetCurrentLimit programs the current limit.
func (d *MPS6010H) SetCurrentLimit(current float64) error {
	return d.Send(fmt.Sprintf("CURR %.3f", current))
}

// SetOutput programs voltage and current limit. Only channel 1 exists.
func (d *MPS6010H) SetOutput(ch int, voltage, currentLimit float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if err := d.SetVoltage(voltage); err != nil {
		return err
	}
	return d.SetCurrentLimit(currentLimit)
}

// MeasureVoltage reads the actual output voltage.
func (d *MPS6010H) MeasureVoltage(ch int) (float64, error) {
	if err := d.checkChannel(ch); err != nil {
		return 0, err
	}
	return d.QueryFloat("MEAS:VOLT?")
}

// MeasureCurrent reads the actual output current.
func (d *MPS6010H) MeasureCurrent(ch int) (float64, error) {
	if err := d.checkChannel(ch); err != nil {
		return 0, err
	}
	return d.QueryFloat("MEAS:CURR?")
}

// VoltageSetpoint reads back the programmed voltage.
func (d *MPS6010H) VoltageSetpoint() (float64, error) {
	return d.QueryFloat("VOLT?")
}

// CurrentLimit reads back the programmed current limit.
func (d *MPS6010H) CurrentLimit() (float64, error) {
	return d.QueryFloat("CURR?")
}

// OutputState reads back whether the output relay is closed.
func (d *MPS6010H) OutputState() (bool, error) {
	resp, err := d.Query("OUTP?")
	if err != nil {
		return false, err
	}
	switch strings.ToUpper(strings.TrimSpace(resp)) {
	case "1", "ON":
		return true, nil
	default:
		return false, nil
	}
}

// Reset parks the output instead of *RST; the supply drops remote mode on
// a bus reset.
func (d *MPS6010H) Reset() error {
	if err := d.EnableOutput(false); err != nil {
		return err
	}
	if err := d.SetVoltage(0); err != nil {
		return err
	}
	return d.SetCurrentLimit(0.1)
}

// Close returns the supply to local control before releasing the link.
func (d *MPS6010H) Close() error {
	_ = d.Send("REM:OFF")
	return d.SCPI.Close()
}
