package shell

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/expr"
)

// scopeMeasUnits gives the unit for each scope measurement type.
var scopeMeasUnits = map[device.ScopeMeasurement]string{
	device.MeasFrequency: "Hz",
	device.MeasPeriod:    "s",
	device.MeasRise:      "s",
	device.MeasFall:      "s",
	device.MeasPWidth:    "s",
	device.MeasNWidth:    "s",
}

func scopeMeasUnit(typ device.ScopeMeasurement) string {
	if u, ok := scopeMeasUnits[typ]; ok {
		return u
	}
	return "V"
}

func (s *Shell) cmdScope(invoked string, args []string) bool {
	if len(args) == 0 {
		s.printer.Error("usage: %s <autoset|run|stop|single|chan|coupling|probe|hscale|hpos|hmove|vscale|vpos|vmove|trigger|measure|measure_store|measure_delay|measure_delay_store|save> ...", invoked)
		return false
	}
	name, dev, ok := s.resolveFor(invoked)
	if !ok {
		return false
	}
	scope, ok := dev.(device.Scope)
	if !ok {
		s.printer.Error("%s is not an oscilloscope", name)
		return false
	}

	sub := strings.ToLower(args[0])
	parsed, perr := parseMeasureArgs(invoked+" "+sub, args[1:])
	if perr != "" {
		s.printer.Error("%s", perr)
		return false
	}
	rest := parsed.words

	fail := func(err error) bool {
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return true
		}
		return false
	}

	switch sub {
	case "autoset":
		if fail(scope.Autoset()) {
			return false
		}
		s.printer.Success("%s: autoset", name)

	case "run", "stop", "single":
		var err error
		switch sub {
		case "run":
			err = scope.Run()
		case "stop":
			err = scope.Stop()
		case "single":
			err = scope.Single()
		}
		if fail(err) {
			return false
		}
		s.printer.Success("%s: %s", name, sub)

	case "chan":
		if len(rest) != 2 || (rest[1] != "on" && rest[1] != "off") {
			s.printer.Error("usage: %s chan <channel> <on|off>", invoked)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s chan: bad channel %q", invoked, rest[0])
			return false
		}
		if fail(scope.EnableChannel(ch, rest[1] == "on")) {
			return false
		}
		s.printer.Success("%s: channel %d %s", name, ch, rest[1])

	case "coupling":
		if len(rest) != 2 {
			s.printer.Error("usage: %s coupling <channel> <ac|dc|gnd>", invoked)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s coupling: bad channel %q", invoked, rest[0])
			return false
		}
		if fail(scope.SetCoupling(ch, strings.ToUpper(rest[1]))) {
			return false
		}
		s.printer.Success("%s ch%d: %s coupling", name, ch, strings.ToUpper(rest[1]))

	case "probe", "vscale", "vpos", "vmove":
		if len(rest) != 2 {
			s.printer.Error("usage: %s %s <channel> <value>", invoked, sub)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s %s: bad channel %q", invoked, sub, rest[0])
			return false
		}
		value, ok := parseFloatArg(rest[1])
		if !ok {
			s.printer.Error("%s %s: bad value %q", invoked, sub, rest[1])
			return false
		}
		var err error
		switch sub {
		case "probe":
			err = scope.SetProbeAttenuation(ch, value)
		case "vscale":
			err = scope.SetVerticalScale(ch, value)
		case "vpos":
			err = scope.SetVerticalPosition(ch, value)
		case "vmove":
			err = scope.MoveVertical(ch, value)
		}
		if fail(err) {
			return false
		}
		s.printer.Success("%s ch%d: %s %g", name, ch, sub, value)

	case "hscale", "hpos", "hmove":
		if len(rest) != 1 {
			s.printer.Error("usage: %s %s <value>", invoked, sub)
			return false
		}
		value, ok := parseFloatArg(rest[0])
		if !ok {
			s.printer.Error("%s %s: bad value %q", invoked, sub, rest[0])
			return false
		}
		var err error
		switch sub {
		case "hscale":
			err = scope.SetHorizontalScale(value)
		case "hpos":
			err = scope.SetHorizontalPosition(value)
		case "hmove":
			err = scope.MoveHorizontal(value)
		}
		if fail(err) {
			return false
		}
		s.printer.Success("%s: %s %g", name, sub, value)

	case "trigger":
		if len(rest) < 2 {
			s.printer.Error("usage: %s trigger <channel> <level> [rise|fall] [auto|normal]", invoked)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s trigger: bad channel %q", invoked, rest[0])
			return false
		}
		level, ok := parseFloatArg(rest[1])
		if !ok {
			s.printer.Error("%s trigger: bad level %q", invoked, rest[1])
			return false
		}
		slope, mode := "rise", "auto"
		if len(rest) >= 3 {
			slope = strings.ToLower(rest[2])
		}
		if len(rest) >= 4 {
			mode = strings.ToLower(rest[3])
		}
		if fail(scope.ConfigureTrigger(ch, level, slope, mode)) {
			return false
		}
		s.printer.Success("%s: trigger ch%d %g V %s %s", name, ch, level, slope, mode)

	case "measure", "measure_store":
		want := 2
		if sub == "measure_store" {
			want = 3
		}
		if len(rest) != want {
			if sub == "measure" {
				s.printer.Error("usage: %s measure <channel> <type>", invoked)
			} else {
				s.printer.Error("usage: %s measure_store <channel> <type> <label> [unit=...] [scale=...]", invoked)
			}
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s %s: bad channel %q", invoked, sub, rest[0])
			return false
		}
		typ, err := device.ParseScopeMeasurement(rest[1])
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		value, err := scope.Measure(ch, typ)
		if fail(err) {
			return false
		}
		if sub == "measure_store" {
			unit := parsed.unit
			if unit == "" {
				unit = scopeMeasUnit(typ)
			}
			s.storeReading(name, rest[2], value*parsed.scale, unit)
			return false
		}
		s.printer.Cyan("%s ch%d %s: %s %s", name, ch, strings.ToLower(string(typ)),
			expr.FormatNumber(value), scopeMeasUnit(typ))

	case "measure_delay", "measure_delay_store":
		label := ""
		if sub == "measure_delay_store" {
			if len(rest) < 3 {
				s.printer.Error("usage: %s measure_delay_store <ch1> <ch2> <label> [edge1 edge2 direction]", invoked)
				return false
			}
			label = rest[2]
			rest = append(rest[:2:2], rest[3:]...)
		}
		if len(rest) < 2 {
			s.printer.Error("usage: %s measure_delay <ch1> <ch2> [edge1 edge2 direction]", invoked)
			return false
		}
		ch1, ok1 := parseChannel(rest[0])
		ch2, ok2 := parseChannel(rest[1])
		if !ok1 || !ok2 {
			s.printer.Error("%s %s: bad channel pair %q %q", invoked, sub, rest[0], rest[1])
			return false
		}
		edge1, edge2, direction := "rise", "rise", "forward"
		if len(rest) >= 3 {
			edge1 = strings.ToLower(rest[2])
		}
		if len(rest) >= 4 {
			edge2 = strings.ToLower(rest[3])
		}
		if len(rest) >= 5 {
			direction = strings.ToLower(rest[4])
		}
		value, err := scope.MeasureDelay(ch1, ch2, edge1, edge2, direction)
		if fail(err) {
			return false
		}
		if label != "" {
			unit := parsed.unit
			if unit == "" {
				unit = "s"
			}
			s.storeReading(name, label, value*parsed.scale, unit)
			return false
		}
		s.printer.Cyan("%s delay ch%d->ch%d: %s s", name, ch1, ch2, expr.FormatNumber(value))

	case "save":
		if len(rest) < 1 {
			s.printer.Error("usage: %s save <path> [channels...] [points=N] [time=seconds]", invoked)
			return false
		}
		path := rest[0]
		var channels []int
		for _, tok := range rest[1:] {
			ch, ok := parseChannel(tok)
			if !ok {
				s.printer.Error("%s save: bad channel %q", invoked, tok)
				return false
			}
			channels = append(channels, ch)
		}
		if len(channels) == 0 {
			channels = []int{1}
		}
		if fail(scope.SaveWaveformsCSV(channels, path, parsed.wave)) {
			return false
		}
		s.printer.Success("%s: waveforms saved to %s", name, path)

	default:
		s.printer.Error("unknown %s subcommand %q (try 'help scope')", invoked, sub)
	}
	return false
}
