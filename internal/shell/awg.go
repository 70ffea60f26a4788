package shell

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
)

// waveAliases maps user-facing waveform names to the canonical driver
// tokens. Unknown names pass through uppercased so driver-specific forms
// still work.
var waveAliases = map[string]string{
	"sine":     "SIN",
	"sin":      "SIN",
	"square":   "SQU",
	"squ":      "SQU",
	"sq":       "SQU",
	"pulse":    "PULS",
	"puls":     "PULS",
	"triangle": "TRI",
	"tri":      "TRI",
	"ramp":     "RAMP",
	"noise":    "NOIS",
	"nois":     "NOIS",
	"dc":       "DC",
	"prbs":     "PRBS",
}

func canonicalWave(tok string) string {
	if form, ok := waveAliases[strings.ToLower(tok)]; ok {
		return form
	}
	return strings.ToUpper(tok)
}

func (s *Shell) cmdAWG(invoked string, args []string) bool {
	if len(args) == 0 {
		s.printer.Error("usage: %s <on|off|chan|wave|freq|amp|offset|duty|phase|sync> ...", invoked)
		return false
	}
	name, dev, ok := s.resolveFor(invoked)
	if !ok {
		return false
	}
	awg, ok := dev.(device.AWG)
	if !ok {
		s.printer.Error("%s is not a waveform generator", name)
		return false
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]
	switch sub {
	case "on", "off":
		on := sub == "on"
		var err error
		if on {
			err = device.EnableAll(awg)
		} else {
			err = device.DisableAll(awg)
		}
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: all outputs %s", name, sub)

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
		if err := awg.EnableChannel(ch, rest[1] == "on"); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: channel %d %s", name, ch, rest[1])

	case "wave":
		if len(rest) < 2 {
			s.printer.Error("usage: %s wave <channel> <sine|square|triangle|ramp|pulse|noise|dc> [freq=...] [amp=...] [offset=...] [duty=...] [phase=...]", invoked)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s wave: bad channel %q", invoked, rest[0])
			return false
		}
		form := canonicalWave(rest[1])
		if err := awg.SetWaveform(ch, form); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		// Trailing key=value pairs program the waveform in one line.
		for _, a := range rest[2:] {
			key, valueText, found := strings.Cut(a, "=")
			if !found {
				s.printer.Error("%s wave: expected key=value, got %q", invoked, a)
				return false
			}
			value, ok := parseFloatArg(valueText)
			if !ok {
				s.printer.Error("%s wave: bad %s value %q", invoked, key, valueText)
				return false
			}
			var err error
			switch strings.ToLower(key) {
			case "freq":
				err = awg.SetFrequency(ch, value)
			case "amp":
				err = awg.SetAmplitude(ch, value)
			case "offset":
				err = awg.SetOffset(ch, value)
			case "duty":
				err = awg.SetDutyCycle(ch, value)
			case "phase":
				err = awg.SetPhase(ch, value)
			default:
				s.printer.Error("%s wave: unknown option %q", invoked, key)
				return false
			}
			if err != nil {
				s.printer.Error("%s: %v", name, err)
				return false
			}
		}
		s.printer.Success("%s ch%d: %s", name, ch, form)

	case "freq", "amp", "offset", "duty", "phase":
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
		var (
			err  error
			unit string
		)
		switch sub {
		case "freq":
			err, unit = awg.SetFrequency(ch, value), "Hz"
		case "amp":
			err, unit = awg.SetAmplitude(ch, value), "Vpp"
		case "offset":
			err, unit = awg.SetOffset(ch, value), "V"
		case "duty":
			err, unit = awg.SetDutyCycle(ch, value), "%"
		case "phase":
			err, unit = awg.SetPhase(ch, value), "deg"
		}
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s ch%d: %s %g %s", name, ch, sub, value, unit)

	case "sync":
		if len(rest) != 1 || (rest[0] != "on" && rest[0] != "off") {
			s.printer.Error("usage: %s sync <on|off>", invoked)
			return false
		}
		so, ok := awg.(device.SyncOutput)
		if !ok {
			s.printer.Error("%s has no sync output", name)
			return false
		}
		if err := so.SetSyncOutput(rest[0] == "on"); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: sync output %s", name, rest[0])

	default:
		s.printer.Error("unknown %s subcommand %q (try 'help awg')", invoked, sub)
	}
	return false
}
