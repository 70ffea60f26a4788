package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// hp34401aFuncs maps measurement modes to 34401A SCPI function names.
// Capacitance and temperature are not on this instrument.
var hp34401aFuncs = map[MeasureMode]string{
	ModeDCVoltage:    "VOLTage:DC",
	ModeACVoltage:    "VOLTage:AC",
	ModeDCCurrent:    "CURRent:DC",
	ModeACCurrent:    "CURRent:AC",
	ModeResistance2W: "RESistance",
	ModeResistance4W: "FRESistance",
	ModeFrequency:    "FREQuency",
	ModePeriod:       "PERiod",
	ModeContinuity:   "CONTinuity",
	ModeDiode:        "DIODe",
}

// hp34401aBare lists the modes whose CONFigure takes no range/resolution.
var hp34401aBare = map[MeasureMode]bool{
	ModeContinuity: true,
	ModeDiode:      true,
}

// HP34401A drives an HP/Agilent 34401A 6.5-digit multimeter, usually on
// GPIB behind a Prologix controller.
type HP34401A struct {
	SCPI
}

// NewHP34401A builds the driver over tr.
func NewHP34401A(tr scpi.Transport) *HP34401A {
	return &HP34401A{SCPI: NewSCPI(KindDMM, "34401A", tr)}
}

// Channels returns nil; the meter has no channel addressing.
func (d *HP34401A) Channels() []int { return nil }

func (d *HP34401A) funcName(mode MeasureMode) (string, error) {
	fn, ok := hp34401aFuncs[mode]
	if !ok {
		return "", fmt.Errorf("%w: 34401A cannot measure %s", ErrNotSupported, mode)
	}
	return fn, nil
}

func rangeArgs(mode MeasureMode, opts MeasureOptions) string {
	if hp34401aBare[mode] {
		return ""
	}
	rng := opts.Range
	if rng == "" {
		rng = "DEF"
	}
	res := opts.Resolution
	if res == "" {
		res = "DEF"
	}
	return fmt.Sprintf(" %s,%s", rng, res)
}

// Configure arms a measurement function; a later Read triggers it.
func (d *HP34401A) Configure(mode MeasureMode, opts MeasureOptions) error {
	fn, err := d.funcName(mode)
	if err != nil {
		return err
	}
	if err := d.Send(fmt.Sprintf("CONFigure:%s%s", fn, rangeArgs(mode, opts))); err != nil {
		return err
	}
	if opts.NPLC > 0 {
		switch mode {
		case ModeDCVoltage, ModeDCCurrent, ModeResistance2W, ModeResistance4W:
			return d.Send(fmt.Sprintf("%s:NPLCycles %g", fn, opts.NPLC))
		default:
			return fmt.Errorf("%w: NPLC does not apply to %s", ErrNotSupported, mode)
		}
	}
	return nil
}

// Read triggers the armed function and returns one reading.
func (d *HP34401A) Read() (float64, error) {
	return d.QueryFloat("READ?")
}

// Fetch returns the last triggered reading without retriggering.
func (d *HP34401A) Fetch() (float64, error) {
	return d.QueryFloat("FETCh?")
}

// Measure configures, triggers and reads in one operation.
func (d *HP34401A) Measure(mode MeasureMode, opts MeasureOptions) (float64, error) {
	fn, err := d.funcName(mode)
	if err != nil {
		return 0, err
	}
	return d.QueryFloat(fmt.Sprintf("MEASure:%s?%s", fn, rangeArgs(mode, opts)))
}

// Beep sounds the beeper once.
func (d *HP34401A) Beep() error {
	return d.Send("SYSTem:BEEPer")
}

// SetDisplay blanks or restores the front-panel display.
func (d *HP34401A) SetDisplay(on bool) error {
	return d.Send("DISPlay " + onOff(on))
}

// DisplayText shows up to 12 characters on the front panel.
func (d *HP34401A) DisplayText(msg string) error {
	if len(msg) > 12 {
		msg = msg[:12]
	}
	return d.Send(fmt.Sprintf("DISPlay:TEXT \"%s\"", msg))
}

// ClearDisplay removes the text message and resumes readings.
func (d *HP34401A) ClearDisplay() error {
	return d.Send("DISPlay:TEXT:CLEar")
}
