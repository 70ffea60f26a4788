package device

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

var (
	_ PSU            = (*E3631A)(nil)
	_ Tracker        = (*E3631A)(nil)
	_ StateSlots     = (*E3631A)(nil)
	_ BulkGate       = (*E3631A)(nil)
	_ PSU            = (*MPS6010H)(nil)
	_ SetpointReader = (*MPS6010H)(nil)
	_ AWG            = (*EDU33212A)(nil)
	_ SyncOutput     = (*EDU33212A)(nil)
	_ BulkGate       = (*EDU33212A)(nil)
	_ AWG            = (*JDS6600)(nil)
	_ BulkGate       = (*JDS6600)(nil)
	_ BulkEnabler    = (*JDS6600)(nil)
	_ DMM            = (*HP34401A)(nil)
	_ Fetcher        = (*HP34401A)(nil)
	_ Beeper         = (*HP34401A)(nil)
	_ TextDisplay    = (*HP34401A)(nil)
	_ DisplaySwitch  = (*HP34401A)(nil)
	_ DMM            = (*XDM1041)(nil)
	_ Scope          = (*MSO2024)(nil)
	_ Acquirer       = (*MSO2024)(nil)
	_ BulkGate       = (*MSO2024)(nil)
	_ BulkEnabler    = (*MSO2024)(nil)
)

func TestE3631ACommands(t *testing.T) {
	tr := scpi.NewSim("HEWLETT-PACKARD,E3631A,0,1.4")
	tr.Stub("MEASURE:VOLTAGE? P6V", "4.998")
	d := NewE3631A(tr)

	if err := d.SetOutput(1, 5.0, 1.0); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	if err := d.EnableOutput(true); err != nil {
		t.Fatalf("EnableOutput: %v", err)
	}
	v, err := d.MeasureVoltage(1)
	if err != nil {
		t.Fatalf("MeasureVoltage: %v", err)
	}
	if v != 4.998 {
		t.Errorf("MeasureVoltage = %v, want 4.998", v)
	}
	if err := d.SetTracking(true); err != nil {
		t.Fatalf("SetTracking: %v", err)
	}

	want := []string{
		"APPLY P6V, 5, 1",
		"OUTPUT:STATE ON",
		"MEASURE:VOLTAGE? P6V",
		"OUTPUT:TRACK ON",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if err := d.SetOutput(4, 1, 1); err == nil {
		t.Error("SetOutput(4): expected channel range error")
	}
	if err := d.SaveState(5); err == nil {
		t.Error("SaveState(5): expected slot range error")
	}
}

func TestE3631ADisableAllParksOutputs(t *testing.T) {
	tr := scpi.NewSim("HEWLETT-PACKARD,E3631A,0,1.4")
	d := NewE3631A(tr)

	if err := d.DisableAllOutputs(); err != nil {
		t.Fatalf("DisableAllOutputs: %v", err)
	}
	want := []string{
		"OUTPUT:STATE OFF",
		"APPLY P6V, 0, 0.1",
		"APPLY P25V, 0, 0.1",
		"APPLY N25V, 0, 0.1",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}
}

func TestMPS6010HCommands(t *testing.T) {
	tr := scpi.NewSim("MATRIX,MPS-6010H,0,1.0")
	tr.Stub("MEAS:VOLT?", "12.001")
	tr.Stub("VOLT?", "12.000")
	tr.Stub("OUTP?", "1")
	d, err := NewMPS6010H(tr)
	if err != nil {
		t.Fatalf("NewMPS6010H: %v", err)
	}

	if err := d.SetOutput(1, 12.0, 0.5); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	if err := d.SetOutput(2, 1, 1); err == nil {
		t.Error("SetOutput(2): expected single-output error")
	}

	v, err := d.MeasureVoltage(1)
	if err != nil || v != 12.001 {
		t.Errorf("MeasureVoltage = %v, %v", v, err)
	}
	sp, err := d.VoltageSetpoint()
	if err != nil || sp != 12.0 {
		t.Errorf("VoltageSetpoint = %v, %v", sp, err)
	}
	on, err := d.OutputState()
	if err != nil || !on {
		t.Errorf("OutputState = %v, %v", on, err)
	}

	sent := tr.Sent()
	if sent[0] != "REM:ON" {
		t.Errorf("first command = %q, want remote handshake", sent[0])
	}
	found := false
	for _, cmd := range sent {
		if cmd == "VOLT 12.000" {
			found = true
		}
	}
	if !found {
		t.Errorf("VOLT 12.000 not sent: %v", sent)
	}
}

func TestEDU33212ACommands(t *testing.T) {
	tr := scpi.NewSim("Keysight Technologies,EDU33212A,0,1.0")
	d := NewEDU33212A(tr)

	if err := d.SetWaveform(1, "SIN"); err != nil {
		t.Fatalf("SetWaveform: %v", err)
	}
	if err := d.SetFrequency(1, 1000); err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if err := d.SetAmplitude(1, 2.5); err != nil {
		t.Fatalf("SetAmplitude: %v", err)
	}
	if err := d.SetOffset(2, 0.5); err != nil {
		t.Fatalf("SetOffset: %v", err)
	}
	if err := d.EnableChannel(1, true); err != nil {
		t.Fatalf("EnableChannel: %v", err)
	}

	want := []string{
		"SOURce1:FUNCtion SIN",
		"SOURce1:FREQuency 1000",
		"SOURce1:VOLTage 2.5",
		"SOURce2:VOLTage:OFFSet 0.5",
		"OUTPut1 ON",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if err := d.SetWaveform(1, "sine"); err == nil {
		t.Error("SetWaveform(sine): expected rejection of non-canonical token")
	}
	if err := d.SetFrequency(3, 1); err == nil {
		t.Error("SetFrequency(3): expected channel range error")
	}
}

func TestJDS6600Commands(t *testing.T) {
	tr := scpi.NewSim("")
	d := NewJDS6600(tr)

	if err := d.SetWaveform(1, "SIN"); err != nil {
		t.Fatalf("SetWaveform: %v", err)
	}
	if err := d.SetWaveform(2, "SQU"); err != nil {
		t.Fatalf("SetWaveform ch2: %v", err)
	}
	if err := d.SetFrequency(1, 1000); err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if err := d.SetFrequency(2, 25e6); err != nil {
		t.Fatalf("SetFrequency high: %v", err)
	}
	if err := d.SetAmplitude(1, 2.5); err != nil {
		t.Fatalf("SetAmplitude: %v", err)
	}
	if err := d.SetOffset(1, -1.5); err != nil {
		t.Fatalf("SetOffset: %v", err)
	}
	if err := d.SetDutyCycle(1, 25); err != nil {
		t.Fatalf("SetDutyCycle: %v", err)
	}
	if err := d.EnableChannel(1, true); err != nil {
		t.Fatalf("EnableChannel: %v", err)
	}
	if err := d.EnableChannel(2, true); err != nil {
		t.Fatalf("EnableChannel ch2: %v", err)
	}
	if err := d.EnableChannel(1, false); err != nil {
		t.Fatalf("EnableChannel off: %v", err)
	}

	want := []string{
		":w21=0.",
		":w22=1.",
		":w23=100000,0.",
		":w24=2500,2.",
		":w25=2500.",
		":w27=850.",
		":w29=250.",
		":w20=1,0.",
		":w20=1,1.",
		":w20=0,1.",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if err := d.SetDutyCycle(1, 100); err == nil {
		t.Error("SetDutyCycle(100): expected range error")
	}
}

func TestHP34401ACommands(t *testing.T) {
	tr := scpi.NewSim("HEWLETT-PACKARD,34401A,0,10-5-2")
	tr.Stub("READ?", "+4.99800000E+00")
	tr.Stub("MEASure:FREQuency? DEF,DEF", "1.00000000E+03")
	d := NewHP34401A(tr)

	if err := d.Configure(ModeDCVoltage, MeasureOptions{Range: "10", NPLC: 10}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	v, err := d.Read()
	if err != nil || v != 4.998 {
		t.Errorf("Read = %v, %v", v, err)
	}
	f, err := d.Measure(ModeFrequency, MeasureOptions{})
	if err != nil || f != 1000 {
		t.Errorf("Measure = %v, %v", f, err)
	}
	if err := d.DisplayText("HELLO"); err != nil {
		t.Fatalf("DisplayText: %v", err)
	}

	want := []string{
		"CONFigure:VOLTage:DC 10,DEF",
		"VOLTage:DC:NPLCycles 10",
		"READ?",
		"MEASure:FREQuency? DEF,DEF",
		"DISPlay:TEXT \"HELLO\"",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if _, err := d.Measure(ModeCapacitance, MeasureOptions{}); err == nil {
		t.Error("Measure(cap): expected unsupported-mode error")
	}
	if err := d.Configure(ModeACVoltage, MeasureOptions{NPLC: 10}); err == nil {
		t.Error("Configure(vac, NPLC): expected unsupported error")
	}
}

func TestXDM1041Commands(t *testing.T) {
	tr := scpi.NewSim("OWON,XDM1041,0,1.0")
	tr.Stub("MEAS?", "99.8")
	d := NewXDM1041(tr)

	if err := d.Configure(ModeResistance2W, MeasureOptions{}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	v, err := d.Read()
	if err != nil || v != 99.8 {
		t.Errorf("Read = %v, %v", v, err)
	}
	if err := d.Configure(ModeFrequency, MeasureOptions{}); err != nil {
		t.Fatalf("Configure freq: %v", err)
	}

	want := []string{
		"CONFigure:RESistance AUTO",
		"MEAS?",
		"CONFigure:FREQuency",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if err := d.Configure(ModeDCVoltage, MeasureOptions{NPLC: 1}); err == nil {
		t.Error("Configure with NPLC: expected fixed-resolution error")
	}
}

func TestMSO2024Measure(t *testing.T) {
	tr := scpi.NewSim("TEKTRONIX,MSO2024,0,1.0")
	tr.Stub("MEASUrement:IMMed:VALue?", "999.87")
	d := NewMSO2024(tr)

	v, err := d.Measure(1, MeasFrequency)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if v != 999.87 {
		t.Errorf("Measure = %v", v)
	}

	want := []string{
		"MEASUrement:IMMed:SOUrce1 CH1",
		"MEASUrement:IMMed:TYPe FREQUENCY",
		"MEASUrement:IMMed:VALue?",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}

	if _, err := d.Measure(5, MeasFrequency); err == nil {
		t.Error("Measure(5): expected channel range error")
	}
}

func TestMSO2024TriggerAndAcquire(t *testing.T) {
	tr := scpi.NewSim("TEKTRONIX,MSO2024,0,1.0")
	d := NewMSO2024(tr)

	if err := d.ConfigureTrigger(2, 0.5, "", ""); err != nil {
		t.Fatalf("ConfigureTrigger: %v", err)
	}
	if err := d.Single(); err != nil {
		t.Fatalf("Single: %v", err)
	}

	want := []string{
		"TRIGger:A:TYPe EDGE",
		"TRIGger:A:EDGE:SOUrce CH2",
		"TRIGger:A:EDGE:SLOpe RISE",
		"TRIGger:A:LEVel:CH2 0.5",
		"TRIGger:A:MODe AUTO",
		"ACQuire:STOPAfter SEQuence",
		"ACQuire:STATE RUN",
	}
	if diff := cmp.Diff(want, tr.Sent()); diff != "" {
		t.Errorf("command stream mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMeasureMode(t *testing.T) {
	m, err := ParseMeasureMode("VDC")
	if err != nil || m != ModeDCVoltage {
		t.Errorf("ParseMeasureMode(VDC) = %v, %v", m, err)
	}
	if _, err := ParseMeasureMode("volts"); err == nil {
		t.Error("ParseMeasureMode(volts): expected error")
	}
}

func TestParseScopeMeasurement(t *testing.T) {
	m, err := ParseScopeMeasurement("vpp")
	if err != nil || m != MeasPk2Pk {
		t.Errorf("ParseScopeMeasurement(vpp) = %v, %v", m, err)
	}
	if _, err := ParseScopeMeasurement("wibble"); err == nil {
		t.Error("ParseScopeMeasurement(wibble): expected error")
	}
}
