package shell

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/expr"
)

// modeUnits gives the natural unit for each measurement mode, used when a
// store command does not override it with unit=.
var modeUnits = map[device.MeasureMode]string{
	device.ModeDCVoltage:    "V",
	device.ModeACVoltage:    "V",
	device.ModeDCCurrent:    "A",
	device.ModeACCurrent:    "A",
	device.ModeResistance2W: "Ohm",
	device.ModeResistance4W: "Ohm",
	device.ModeFrequency:    "Hz",
	device.ModePeriod:       "s",
	device.ModeContinuity:   "Ohm",
	device.ModeDiode:        "V",
	device.ModeCapacitance:  "F",
	device.ModeTemperature:  "C",
}

// measureArgs is a parsed dmm argument tail: positional words plus
// key=value options.
type measureArgs struct {
	words []string
	opts  device.MeasureOptions
	wave  device.WaveformOptions
	unit  string
	scale float64
}

func parseMeasureArgs(invoked string, args []string) (measureArgs, string) {
	out := measureArgs{scale: 1}
	for _, a := range args {
		key, value, found := strings.Cut(a, "=")
		if !found {
			out.words = append(out.words, a)
			continue
		}
		switch strings.ToLower(key) {
		case "range":
			out.opts.Range = strings.ToUpper(value)
		case "res", "resolution":
			out.opts.Resolution = strings.ToUpper(value)
		case "nplc":
			nplc, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return out, invoked + ": bad nplc value " + strconv.Quote(value)
			}
			out.opts.NPLC = nplc
		case "unit":
			out.unit = value
		case "scale":
			scale, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return out, invoked + ": bad scale value " + strconv.Quote(value)
			}
			out.scale = scale
		case "points", "record":
			points, err := strconv.Atoi(value)
			if err != nil || points < 0 {
				return out, invoked + ": bad point count " + strconv.Quote(value)
			}
			out.wave.MaxPoints = points
		case "time":
			window, err := strconv.ParseFloat(value, 64)
			if err != nil || window < 0 {
				return out, invoked + ": bad time window " + strconv.Quote(value)
			}
			out.wave.TimeWindow = window
		default:
			return out, invoked + ": unknown option " + strconv.Quote(key)
		}
	}
	return out, ""
}

func (s *Shell) cmdDMM(invoked string, args []string) bool {
	if len(args) == 0 {
		s.printer.Error("usage: %s <config|read|fetch|meas|read_store|meas_store|beep|display|text|text_loop|cleartext|modes> ...", invoked)
		return false
	}
	name, dev, ok := s.resolveFor(invoked)
	if !ok {
		return false
	}
	dmm, ok := dev.(device.DMM)
	if !ok {
		s.printer.Error("%s is not a multimeter", name)
		return false
	}

	sub := strings.ToLower(args[0])
	parsed, perr := parseMeasureArgs(invoked+" "+sub, args[1:])
	if perr != "" {
		s.printer.Error("%s", perr)
		return false
	}
	rest := parsed.words

	switch sub {
	case "modes":
		s.printer.Plain("modes: %s", strings.Join(device.MeasureModeAliases(), " "))

	case "config":
		if len(rest) != 1 {
			s.printer.Error("usage: %s config <mode> [range=...] [res=...] [nplc=...]", invoked)
			return false
		}
		mode, err := device.ParseMeasureMode(rest[0])
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		if err := dmm.Configure(mode, parsed.opts); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: configured for %s", name, mode)

	case "read":
		value, err := dmm.Read()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Cyan("%s: %s", name, expr.FormatNumber(value))

	case "fetch":
		f, ok := dmm.(device.Fetcher)
		if !ok {
			s.printer.Error("%s cannot fetch without retriggering", name)
			return false
		}
		value, err := f.Fetch()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Cyan("%s: %s", name, expr.FormatNumber(value))

	case "meas":
		if len(rest) != 1 {
			s.printer.Error("usage: %s meas <mode> [range=...] [res=...] [nplc=...]", invoked)
			return false
		}
		mode, err := device.ParseMeasureMode(rest[0])
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		value, err := dmm.Measure(mode, parsed.opts)
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Cyan("%s: %s %s", name, expr.FormatNumber(value), modeUnits[mode])

	case "read_store":
		if len(rest) != 1 {
			s.printer.Error("usage: %s read_store <label> [unit=...] [scale=...]", invoked)
			return false
		}
		value, err := dmm.Read()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.storeReading(name, rest[0], value*parsed.scale, parsed.unit)

	case "meas_store":
		if len(rest) != 2 {
			s.printer.Error("usage: %s meas_store <mode> <label> [unit=...] [scale=...]", invoked)
			return false
		}
		mode, err := device.ParseMeasureMode(rest[0])
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		value, err := dmm.Measure(mode, parsed.opts)
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		unit := parsed.unit
		if unit == "" {
			unit = modeUnits[mode]
		}
		s.storeReading(name, rest[1], value*parsed.scale, unit)

	case "beep":
		b, ok := dmm.(device.Beeper)
		if !ok {
			s.printer.Error("%s has no beeper", name)
			return false
		}
		if err := b.Beep(); err != nil {
			s.printer.Error("%s: %v", name, err)
		}

	case "display":
		if len(rest) != 1 || (rest[0] != "on" && rest[0] != "off") {
			s.printer.Error("usage: %s display <on|off>", invoked)
			return false
		}
		d, ok := dmm.(device.DisplaySwitch)
		if !ok {
			s.printer.Error("%s has no display switch", name)
			return false
		}
		if err := d.SetDisplay(rest[0] == "on"); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: display %s", name, rest[0])

	case "text":
		if len(rest) == 0 {
			s.printer.Error("usage: %s text <message>", invoked)
			return false
		}
		td, ok := dmm.(device.TextDisplay)
		if !ok {
			s.printer.Error("%s has no text display", name)
			return false
		}
		s.ticker.stop()
		if err := td.DisplayText(strings.Join(rest, " ")); err != nil {
			s.printer.Error("%s: %v", name, err)
		}

	case "text_loop":
		if len(rest) == 0 {
			s.printer.Error("usage: %s text_loop <message> [width]", invoked)
			return false
		}
		if _, ok := dmm.(device.TextDisplay); !ok {
			s.printer.Error("%s has no text display", name)
			return false
		}
		width := 0
		msg := strings.Join(rest, " ")
		if len(rest) >= 2 {
			if w, err := strconv.Atoi(rest[len(rest)-1]); err == nil {
				width = w
				msg = strings.Join(rest[:len(rest)-1], " ")
			}
		}
		s.ticker.start(msg, width)
		s.tick()

	case "cleartext":
		td, ok := dmm.(device.TextDisplay)
		if !ok {
			s.printer.Error("%s has no text display", name)
			return false
		}
		s.ticker.stop()
		if err := td.ClearDisplay(); err != nil {
			s.printer.Error("%s: %v", name, err)
		}

	default:
		s.printer.Error("unknown %s subcommand %q (try 'help dmm')", invoked, sub)
	}
	return false
}

// storeReading records one measurement in the log and reports it.
func (s *Shell) storeReading(source, label string, value float64, unit string) {
	s.log.Add(label, value, unit, source)
	if unit != "" {
		s.printer.Success("%s = %s %s (from %s)", label, expr.FormatNumber(value), unit, source)
	} else {
		s.printer.Success("%s = %s (from %s)", label, expr.FormatNumber(value), source)
	}
}
