package device

import (
	"fmt"
	"strings"
)

// PSU is the contract power-supply drivers satisfy. Single-output supplies
// accept only channel 1.
type PSU interface {
	Device
	OutputGate
	SetOutput(ch int, voltage, currentLimit float64) error
	MeasureVoltage(ch int) (float64, error)
	MeasureCurrent(ch int) (float64, error)
}

// Tracker couples PSU channels so paired outputs track each other.
type Tracker interface {
	SetTracking(on bool) error
}

// StateSlots saves and recalls front-panel setups in numbered slots.
type StateSlots interface {
	SaveState(slot int) error
	RecallState(slot int) error
}

// SetpointReader reads back programmed values as opposed to measurements.
type SetpointReader interface {
	VoltageSetpoint() (float64, error)
	CurrentLimit() (float64, error)
	OutputState() (bool, error)
}

// AWG is the contract waveform-generator drivers satisfy.
type AWG interface {
	Device
	ChannelGate
	SetWaveform(ch int, form string) error
	SetFrequency(ch int, hz float64) error
	SetAmplitude(ch int, vpp float64) error
	SetOffset(ch int, volts float64) error
	SetDutyCycle(ch int, percent float64) error
	SetPhase(ch int, degrees float64) error
}

// SyncOutput switches a generator's sync/trigger output connector.
type SyncOutput interface {
	SetSyncOutput(on bool) error
}

// MeasureMode is a DMM measurement function. The set is closed: command
// parsing maps user aliases onto these values and rejects anything else.
type MeasureMode int

const (
	ModeDCVoltage MeasureMode = iota
	ModeACVoltage
	ModeDCCurrent
	ModeACCurrent
	ModeResistance2W
	ModeResistance4W
	ModeFrequency
	ModePeriod
	ModeContinuity
	ModeDiode
	ModeCapacitance
	ModeTemperature
)

var modeNames = map[MeasureMode]string{
	ModeDCVoltage:    "dc voltage",
	ModeACVoltage:    "ac voltage",
	ModeDCCurrent:    "dc current",
	ModeACCurrent:    "ac current",
	ModeResistance2W: "2-wire resistance",
	ModeResistance4W: "4-wire resistance",
	ModeFrequency:    "frequency",
	ModePeriod:       "period",
	ModeContinuity:   "continuity",
	ModeDiode:        "diode",
	ModeCapacitance:  "capacitance",
	ModeTemperature:  "temperature",
}

func (m MeasureMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MeasureMode(%d)", int(m))
}

var modeAliases = map[string]MeasureMode{
	"vdc":   ModeDCVoltage,
	"vac":   ModeACVoltage,
	"idc":   ModeDCCurrent,
	"iac":   ModeACCurrent,
	"res":   ModeResistance2W,
	"fres":  ModeResistance4W,
	"freq":  ModeFrequency,
	"per":   ModePeriod,
	"cont":  ModeContinuity,
	"diode": ModeDiode,
	"cap":   ModeCapacitance,
	"temp":  ModeTemperature,
}

// ParseMeasureMode maps a user alias (vdc, vac, idc, iac, res, fres, freq,
// per, cont, diode, cap, temp) to its mode.
func ParseMeasureMode(alias string) (MeasureMode, error) {
	m, ok := modeAliases[strings.ToLower(alias)]
	if !ok {
		return 0, fmt.Errorf("device: unknown measurement mode %q", alias)
	}
	return m, nil
}

// MeasureModeAliases returns the accepted mode aliases, for help output.
func MeasureModeAliases() []string {
	return []string{"vdc", "vac", "idc", "iac", "res", "fres", "freq", "per", "cont", "diode", "cap", "temp"}
}

// MeasureOptions tunes a DMM configuration. Zero values mean instrument
// defaults.
type MeasureOptions struct {
	Range      string  // numeric range, "AUTO", "MIN", "MAX" or "DEF"
	Resolution string  // numeric resolution or "DEF"
	NPLC       float64 // integration time in power line cycles, 0 = default
}

// DMM is the contract multimeter drivers satisfy. Configure arms a
// function; Read triggers and fetches one reading; Measure configures,
// triggers and reads in one shot.
type DMM interface {
	Device
	Configure(mode MeasureMode, opts MeasureOptions) error
	Read() (float64, error)
	Measure(mode MeasureMode, opts MeasureOptions) (float64, error)
}

// Fetcher retrieves the last triggered reading without retriggering.
type Fetcher interface {
	Fetch() (float64, error)
}

// Beeper sounds the instrument's beeper.
type Beeper interface {
	Beep() error
}

// DisplaySwitch blanks or restores the front-panel display.
type DisplaySwitch interface {
	SetDisplay(on bool) error
}

// ScopeMeasurement is an immediate-measurement type supported by scope
// drivers. The set is closed and validated at parse time.
type ScopeMeasurement string

const (
	MeasFrequency ScopeMeasurement = "FREQUENCY"
	MeasPeriod    ScopeMeasurement = "PERIOD"
	MeasPk2Pk     ScopeMeasurement = "PK2PK"
	MeasAmplitude ScopeMeasurement = "AMPLITUDE"
	MeasMean      ScopeMeasurement = "MEAN"
	MeasRMS       ScopeMeasurement = "RMS"
	MeasMinimum   ScopeMeasurement = "MINIMUM"
	MeasMaximum   ScopeMeasurement = "MAXIMUM"
	MeasRise      ScopeMeasurement = "RISE"
	MeasFall      ScopeMeasurement = "FALL"
	MeasPWidth    ScopeMeasurement = "PWIDTH"
	MeasNWidth    ScopeMeasurement = "NWIDTH"
)

var scopeMeasurements = map[string]ScopeMeasurement{
	"freq":      MeasFrequency,
	"frequency": MeasFrequency,
	"period":    MeasPeriod,
	"pk2pk":     MeasPk2Pk,
	"vpp":       MeasPk2Pk,
	"amplitude": MeasAmplitude,
	"amp":       MeasAmplitude,
	"mean":      MeasMean,
	"rms":       MeasRMS,
	"min":       MeasMinimum,
	"max":       MeasMaximum,
	"rise":      MeasRise,
	"fall":      MeasFall,
	"pwidth":    MeasPWidth,
	"nwidth":    MeasNWidth,
}

// ParseScopeMeasurement maps a user token to a supported measurement type.
func ParseScopeMeasurement(token string) (ScopeMeasurement, error) {
	m, ok := scopeMeasurements[strings.ToLower(token)]
	if !ok {
		return "", fmt.Errorf("device: unknown measurement type %q", token)
	}
	return m, nil
}

// WaveformOptions limits a waveform download.
type WaveformOptions struct {
	MaxPoints  int     // 0 = full record
	TimeWindow float64 // seconds around the trigger, 0 = full record
}

// Scope is the contract oscilloscope drivers satisfy.
type Scope interface {
	Device
	Acquirer
	ChannelGate
	Autoset() error
	SetCoupling(ch int, coupling string) error
	SetProbeAttenuation(ch int, factor float64) error
	SetHorizontalScale(secPerDiv float64) error
	SetHorizontalPosition(percent float64) error
	MoveHorizontal(delta float64) error
	SetVerticalScale(ch int, voltsPerDiv float64) error
	SetVerticalPosition(ch int, divisions float64) error
	MoveVertical(ch int, delta float64) error
	ConfigureTrigger(ch int, level float64, slope, mode string) error
	Measure(ch int, typ ScopeMeasurement) (float64, error)
	MeasureDelay(ch1, ch2 int, edge1, edge2, direction string) (float64, error)
	SaveWaveformsCSV(channels []int, path string, opts WaveformOptions) error
}
