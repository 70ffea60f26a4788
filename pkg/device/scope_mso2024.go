package device

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// MSO2024 drives a Tektronix MSO2024 four-channel oscilloscope using the
// legacy IMMed measurement commands.
type MSO2024 struct {
	SCPI
}

// NewMSO2024 builds the driver over tr.
func NewMSO2024(tr scpi.Transport) *MSO2024 {
	return &MSO2024{SCPI: NewSCPI(KindScope, "MSO2024", tr)}
}

// Channels lists the four analog channels.
func (d *MSO2024) Channels() []int { return []int{1, 2, 3, 4} }

func (d *MSO2024) checkChannel(ch int) error {
	if ch < 1 || ch > 4 {
		return fmt.Errorf("device: MSO2024: channel %d out of range (1-4)", ch)
	}
	return nil
}

// Autoset runs the front-panel autoset.
func (d *MSO2024) Autoset() error {
	return d.Send("AUTOSet EXECute")
}

// Run starts continuous acquisition.
func (d *MSO2024) Run() error {
	if err := d.Send("ACQuire:STOPAfter RUNSTop"); err != nil {
		return err
	}
	return d.Send("ACQuire:STATE RUN")
}

// Stop halts acquisition.
func (d *MSO2024) Stop() error {
	return d.Send("ACQuire:STATE STOP")
}

// Single arms one acquisition sequence.
func (d *MSO2024) Single() error {
	if err := d.Send("ACQuire:STOPAfter SEQuence"); err != nil {
		return err
	}
	return d.Send("ACQuire:STATE RUN")
}

// EnableChannel shows or hides one analog channel.
func (d *MSO2024) EnableChannel(ch int, on bool) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("SELect:CH%d %s", ch, onOff(on)))
}

// DisableAllOutputs hides every channel and the math trace. On a scope
// "output" means a displayed trace.
func (d *MSO2024) DisableAllOutputs() error {
	for _, ch := range d.Channels() {
		if err := d.EnableChannel(ch, false); err != nil {
			return err
		}
	}
	return d.Send("SELect:MATH OFF")
}

// EnableAllOutputs shows every analog channel.
func (d *MSO2024) EnableAllOutputs() error {
	for _, ch := range d.Channels() {
		if err := d.EnableChannel(ch, true); err != nil {
			return err
		}
	}
	return nil
}

// SetCoupling sets one channel's input coupling (AC, DC or GND).
func (d *MSO2024) SetCoupling(ch int, coupling string) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	c := strings.ToUpper(coupling)
	switch c {
	case "AC", "DC", "GND":
	default:
		return fmt.Errorf("device: MSO2024: coupling %q not one of AC, DC, GND", coupling)
	}
	return d.Send(fmt.Sprintf("CH%d:COUPling %s", ch, c))
}

// SetProbeAttenuation programs the probe factor. The legacy command takes
// gain, the reciprocal of attenuation.
func (d *MSO2024) SetProbeAttenuation(ch int, factor float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if factor <= 0 {
		return fmt.Errorf("device: MSO2024: probe attenuation must be positive")
	}
	return d.Send(fmt.Sprintf("CH%d:PRObe:GAIN %g", ch, 1/factor))
}

// SetHorizontalScale sets the timebase in seconds per division.
func (d *MSO2024) SetHorizontalScale(secPerDiv float64) error {
	return d.Send(fmt.Sprintf("HORizontal:SCAle %g", secPerDiv))
}

// SetHorizontalPosition sets the trigger position as percent of record.
func (d *MSO2024) SetHorizontalPosition(percent float64) error {
	return d.Send(fmt.Sprintf("HORizontal:POSition %g", percent))
}

// MoveHorizontal shifts the trigger position by a percentage delta.
func (d *MSO2024) MoveHorizontal(delta float64) error {
	pos, err := d.QueryFloat("HORizontal:POSition?")
	if err != nil {
		return err
	}
	return d.SetHorizontalPosition(pos + delta)
}

// SetVerticalScale sets one channel's volts per division and position.
func (d *MSO2024) SetVerticalScale(ch int, voltsPerDiv float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("CH%d:SCAle %g", ch, voltsPerDiv))
}

// SetVerticalPosition sets one channel's vertical offset in divisions.
func (d *MSO2024) SetVerticalPosition(ch int, divisions float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	return d.Send(fmt.Sprintf("CH%d:POSition %g", ch, divisions))
}

// MoveVertical shifts one channel's vertical position by a delta in
// divisions.
func (d *MSO2024) MoveVertical(ch int, delta float64) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	pos, err := d.QueryFloat(fmt.Sprintf("CH%d:POSition?", ch))
	if err != nil {
		return err
	}
	return d.SetVerticalPosition(ch, pos+delta)
}

// ConfigureTrigger sets up an edge trigger on one channel.
func (d *MSO2024) ConfigureTrigger(ch int, level float64, slope, mode string) error {
	if err := d.checkChannel(ch); err != nil {
		return err
	}
	if slope == "" {
		slope = "RISE"
	}
	if mode == "" {
		mode = "AUTO"
	}
	cmds := []string{
		"TRIGger:A:TYPe EDGE",
		fmt.Sprintf("TRIGger:A:EDGE:SOUrce CH%d", ch),
		fmt.Sprintf("TRIGger:A:EDGE:SLOpe %s", strings.ToUpper(slope)),
		fmt.Sprintf("TRIGger:A:LEVel:CH%d %g", ch, level),
		fmt.Sprintf("TRIGger:A:MODe %s", strings.ToUpper(mode)),
	}
	for _, cmd := range cmds {
		if err := d.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Measure takes one immediate measurement on a channel.
func (d *MSO2024) Measure(ch int, typ ScopeMeasurement) (float64, error) {
	if err := d.checkChannel(ch); err != nil {
		return 0, err
	}
	if err := d.Send(fmt.Sprintf("MEASUrement:IMMed:SOUrce1 CH%d", ch)); err != nil {
		return 0, err
	}
	if err := d.Send(fmt.Sprintf("MEASUrement:IMMed:TYPe %s", typ)); err != nil {
		return 0, err
	}
	return d.QueryFloat("MEASUrement:IMMed:VALue?")
}

// MeasureDelay measures edge-to-edge delay between two channels.
func (d *MSO2024) MeasureDelay(ch1, ch2 int, edge1, edge2, direction string) (float64, error) {
	if err := d.checkChannel(ch1); err != nil {
		return 0, err
	}
	if err := d.checkChannel(ch2); err != nil {
		return 0, err
	}
	if edge1 == "" {
		edge1 = "RISE"
	}
	if edge2 == "" {
		edge2 = "RISE"
	}
	if direction == "" {
		direction = "FORWards"
	}
	cmds := []string{
		"MEASUrement:IMMed:TYPe DELAY",
		fmt.Sprintf("MEASUrement:IMMed:SOUrce1 CH%d", ch1),
		fmt.Sprintf("MEASUrement:IMMed:SOUrce2 CH%d", ch2),
		fmt.Sprintf("MEASUrement:IMMed:DELay:EDGE1 %s", strings.ToUpper(edge1)),
		fmt.Sprintf("MEASUrement:IMMed:DELay:EDGE2 %s", strings.ToUpper(edge2)),
		fmt.Sprintf("MEASUrement:IMMed:DELay:DIRection %s", strings.ToUpper(direction)),
	}
	for _, cmd := range cmds {
		if err := d.Send(cmd); err != nil {
			return 0, err
		}
	}
	return d.QueryFloat("MEASUrement:IMMed:VALue?")
}

// waveform holds one channel's scaled samples.
type waveform struct {
	ch      int
	xIncr   float64
	xZero   float64
	samples []float64
}

// fetchWaveform downloads one channel's record as scaled volts.
func (d *MSO2024) fetchWaveform(ch int, opts WaveformOptions) (*waveform, error) {
	if err := d.Send(fmt.Sprintf("DATa:SOUrce CH%d", ch)); err != nil {
		return nil, err
	}
	if err := d.Send("DATa:ENCdg ASCii"); err != nil {
		return nil, err
	}
	if err := d.Send("WFMOutpre:BYT_Nr 1"); err != nil {
		return nil, err
	}

	yMult, err := d.QueryFloat("WFMOutpre:YMUlt?")
	if err != nil {
		return nil, err
	}
	yOff, err := d.QueryFloat("WFMOutpre:YOff?")
	if err != nil {
		return nil, err
	}
	yZero, err := d.QueryFloat("WFMOutpre:YZero?")
	if err != nil {
		return nil, err
	}
	xIncr, err := d.QueryFloat("WFMOutpre:XINcr?")
	if err != nil {
		return nil, err
	}
	xZero, err := d.QueryFloat("WFMOutpre:XZero?")
	if err != nil {
		return nil, err
	}

	stop := 0
	if opts.MaxPoints > 0 {
		stop = opts.MaxPoints
	}
	if opts.TimeWindow > 0 && xIncr > 0 {
		points := int(opts.TimeWindow / xIncr)
		if stop == 0 || points < stop {
			stop = points
		}
	}
	if err := d.Send("DATa:STARt 1"); err != nil {
		return nil, err
	}
	if stop > 0 {
		if err := d.Send(fmt.Sprintf("DATa:STOP %d", stop)); err != nil {
			return nil, err
		}
	}

	raw, err := d.Query("CURVe?")
	if err != nil {
		return nil, err
	}
	wf := &waveform{ch: ch, xIncr: xIncr, xZero: xZero}
	for _, field := range strings.Split(raw, ",") {
		level, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("device: MSO2024: bad curve sample %q: %w", field, err)
		}
		wf.samples = append(wf.samples, (level-yOff)*yMult+yZero)
	}
	return wf, nil
}

// SaveWaveformsCSV downloads one or more channels and writes them as a CSV
// file with a time column and one voltage column per channel.
func (d *MSO2024) SaveWaveformsCSV(channels []int, path string, opts WaveformOptions) error {
	if len(channels) == 0 {
		return fmt.Errorf("device: MSO2024: no channels to save")
	}
	waveforms := make([]*waveform, 0, len(channels))
	for _, ch := range channels {
		if err := d.checkChannel(ch); err != nil {
			return err
		}
		wf, err := d.fetchWaveform(ch, opts)
		if err != nil {
			return err
		}
		waveforms = append(waveforms, wf)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("device: MSO2024: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time"}
	maxLen := 0
	for _, wf := range waveforms {
		header = append(header, fmt.Sprintf("CH%d", wf.ch))
		if len(wf.samples) > maxLen {
			maxLen = len(wf.samples)
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("device: MSO2024: write %s: %w", path, err)
	}

	base := waveforms[0]
	for i := 0; i < maxLen; i++ {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(base.xZero+float64(i)*base.xIncr, 'g', -1, 64))
		for _, wf := range waveforms {
			if i < len(wf.samples) {
				row = append(row, strconv.FormatFloat(wf.samples[i], 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("device: MSO2024: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("device: MSO2024: write %s: %w", path, err)
	}
	return f.Close()
}
