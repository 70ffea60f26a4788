package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// xdm1041Funcs maps measurement modes to the XDM1041's CONFigure targets.
var xdm1041Funcs = map[MeasureMode]string{
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
	ModeCapacitance:  "CAPacitance",
}

// xdm1041NoRange lists configure targets that take no range argument.
var xdm1041NoRange = map[MeasureMode]bool{
	ModeFrequency:  true,
	ModePeriod:     true,
	ModeContinuity: true,
	ModeDiode:      true,
}

// XDM1041 drives an Owon XDM1041 multimeter. Its SCPI dialect differs from
// the 34401A family: range goes on the CONFigure line (AUTO when
// unspecified), resolution and NPLC are not programmable, and readings use
// the short MEAS? query instead of READ?.
type XDM1041 struct {
	SCPI
}

// NewXDM1041 builds the driver over tr.
func NewXDM1041(tr scpi.Transport) *XDM1041 {
	return &XDM1041{SCPI: NewSCPI(KindDMM, "XDM1041", tr)}
}

// Channels returns nil; the meter has no channel addressing.
func (d *XDM1041) Channels() []int { return nil }

// Configure arms a measurement function.
func (d *XDM1041) Configure(mode MeasureMode, opts MeasureOptions) error {
	if mode == ModeTemperature {
		return d.Send("CONFigure:TEMPerature:RTD KITS90")
	}
	fn, ok := xdm1041Funcs[mode]
	if !ok {
		return fmt.Errorf("%w: XDM1041 cannot measure %s", ErrNotSupported, mode)
	}
	if opts.Resolution != "" || opts.NPLC > 0 {
		return fmt.Errorf("%w: XDM1041 has fixed resolution", ErrNotSupported)
	}
	if xdm1041NoRange[mode] {
		return d.Send("CONFigure:" + fn)
	}
	rng := opts.Range
	if rng == "" {
		rng = "AUTO"
	}
	return d.Send(fmt.Sprintf("CONFigure:%s %s", fn, rng))
}

// Read returns one reading of the armed function via MEAS?.
func (d *XDM1041) Read() (float64, error) {
	return d.QueryFloat("MEAS?")
}

// Measure configures and reads in one operation.
func (d *XDM1041) Measure(mode MeasureMode, opts MeasureOptions) (float64, error) {
	if err := d.Configure(mode, opts); err != nil {
		return 0, err
	}
	return d.Read()
}
