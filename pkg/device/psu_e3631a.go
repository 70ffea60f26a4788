package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// e3631aChannels maps channel numbers to the E3631A's named outputs.
var e3631aChannels = map[int]string{
	1: "P6V",
	2: "P25V",
	3: "N25V",
}

// E3631A drives an HP/Agilent E3631A triple-output power supply. The
// instrument has one master output switch covering all three outputs.
type E3631A struct {
	SCPI
}

// NewE3631A builds the driver over tr.
func NewE3631A(tr scpi.Transport) *E3631A {
	return &E3631A{SCPI: NewSCPI(KindPSU, "E3631A", tr)}
}

// Channels lists the three outputs: 1=P6V, 2=P25V, 3=N25V.
func (d *E3631A) Channels() []int { return []int{1, 2, 3} }

func (d *E3631A) channelName(ch int) (string, error) {
	name, ok := e3631aChannels[ch]
	if !ok {
		return "", fmt.Errorf("device: E3631A: channel %d out of range (1-3)", ch)
	}
	return name, nil
}

// EnableOutput switches the master output gate.
func (d *E3631A) EnableOutput(on bool) error {
	return d.Send("OUTPUT:STATE " + onOff(on))
}

// SetOutput programs one output's voltage and current limit.
func (d *E3631A) SetOutput(ch int, voltage, currentLimit float64) error {
	name, err := d.channelName(ch)
	if err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("APPLY %s, %g, %g", name, voltage, currentLimit))
}

// MeasureVoltage reads the actual output voltage of one channel.
func (d *E3631A) MeasureVoltage(ch int) (float64, error) {
	name, err := d.channelName(ch)
	if err != nil {
		return 0, err
	}
	return d.QueryFloat("MEASURE:VOLTAGE? " + name)
}

// MeasureCurrent reads the actual output current of one channel.
func (d *E3631A) MeasureCurrent(ch int) (float64, error) {
	name, err := d.channelName(ch)
	if err != nil {
		return 0, err
	}
	return d.QueryFloat("MEASURE:CURRENT? " + name)
}

// Select makes one output the target of front-panel and unaddressed
// commands.
func (d *E3631A) Select(ch int) error {
	name, err := d.channelName(ch)
	if err != nil {
		return err
	}
	return d.Send("INSTRUMENT:SELECT " + name)
}

// DisableAllOutputs opens the master gate and programs every output to 0 V
// with a minimal current limit, so a later master enable stays harmless.
func (d *E3631A) DisableAllOutputs() error {
	if err := d.EnableOutput(false); err != nil {
		return err
	}
	for ch := 1; ch <= 3; ch++ {
		if err := d.SetOutput(ch, 0.0, 0.1); err != nil {
			return err
		}
	}
	return nil
}

// SetTracking couples the +25V and -25V outputs.
func (d *E3631A) SetTracking(on bool) error {
	return d.Send("OUTPUT:TRACK " + onOff(on))
}

// SaveState stores the instrument setup in a numbered slot (1-3).
func (d *E3631A) SaveState(slot int) error {
	if slot < 1 || slot > 3 {
		return fmt.Errorf("device: E3631A: state slot %d out of range (1-3)", slot)
	}
	return d.Send(fmt.Sprintf("*SAV %d", slot))
}

// RecallState restores a numbered setup slot (1-3).
func (d *E3631A) RecallState(slot int) error {
	if slot < 1 || slot > 3 {
		return fmt.Errorf("device: E3631A: state slot %d out of range (1-3)", slot)
	}
	return d.Send(fmt.Sprintf("*RCL %d", slot))
}
