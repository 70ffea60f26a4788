package shell

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/expr"
)

func parseChannel(tok string) (int, bool) {
	ch, err := strconv.Atoi(tok)
	if err != nil || ch < 1 {
		return 0, false
	}
	return ch, true
}

func parseFloatArg(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}

func (s *Shell) cmdPSU(invoked string, args []string) bool {
	if len(args) == 0 {
		s.printer.Error("usage: %s <on|off|set|meas|get|track|save|recall> ...", invoked)
		return false
	}
	name, dev, ok := s.resolveFor(invoked)
	if !ok {
		return false
	}
	psu, ok := dev.(device.PSU)
	if !ok {
		s.printer.Error("%s is not a power supply", name)
		return false
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]
	switch sub {
	case "on", "off":
		on := sub == "on"
		if len(rest) == 0 {
			var err error
			if on {
				err = device.EnableAll(psu)
			} else {
				err = device.DisableAll(psu)
			}
			if err != nil {
				s.printer.Error("%s: %v", name, err)
				return false
			}
			s.printer.Success("%s: all outputs %s", name, sub)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("usage: %s %s [channel]", invoked, sub)
			return false
		}
		gate, ok := psu.(device.ChannelGate)
		if !ok {
			s.printer.Error("%s has no per-channel switching", name)
			return false
		}
		if err := gate.EnableChannel(ch, on); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: channel %d %s", name, ch, sub)

	case "set":
		if len(rest) < 2 {
			s.printer.Error("usage: %s set <channel> <volts> [amps]", invoked)
			return false
		}
		ch, ok := parseChannel(rest[0])
		if !ok {
			s.printer.Error("%s set: bad channel %q", invoked, rest[0])
			return false
		}
		volts, ok := parseFloatArg(rest[1])
		if !ok {
			s.printer.Error("%s set: bad voltage %q", invoked, rest[1])
			return false
		}
		amps := 0.0
		if len(rest) >= 3 {
			if amps, ok = parseFloatArg(rest[2]); !ok {
				s.printer.Error("%s set: bad current limit %q", invoked, rest[2])
				return false
			}
		}
		if err := psu.SetOutput(ch, volts, amps); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		if amps > 0 {
			s.printer.Success("%s ch%d: %g V, %g A limit", name, ch, volts, amps)
		} else {
			s.printer.Success("%s ch%d: %g V", name, ch, volts)
		}

	case "meas":
		if len(rest) == 0 {
			s.printer.Error("usage: %s meas <v|i> [channel]", invoked)
			return false
		}
		ch := 1
		if len(rest) >= 2 {
			if ch, ok = parseChannel(rest[1]); !ok {
				s.printer.Error("%s meas: bad channel %q", invoked, rest[1])
				return false
			}
		}
		var (
			value float64
			unit  string
			err   error
		)
		switch strings.ToLower(rest[0]) {
		case "v", "volt", "voltage":
			value, err = psu.MeasureVoltage(ch)
			unit = "V"
		case "i", "curr", "current":
			value, err = psu.MeasureCurrent(ch)
			unit = "A"
		default:
			s.printer.Error("usage: %s meas <v|i> [channel]", invoked)
			return false
		}
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Cyan("%s ch%d: %s %s", name, ch, expr.FormatNumber(value), unit)

	case "get":
		sp, ok := psu.(device.SetpointReader)
		if !ok {
			s.printer.Error("%s cannot read back setpoints", name)
			return false
		}
		volts, err := sp.VoltageSetpoint()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		amps, err := sp.CurrentLimit()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		on, err := sp.OutputState()
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		state := "off"
		if on {
			state = "on"
		}
		s.printer.Cyan("%s: %g V, %g A limit, output %s", name, volts, amps, state)

	case "track":
		if len(rest) != 1 || (rest[0] != "on" && rest[0] != "off") {
			s.printer.Error("usage: %s track <on|off>", invoked)
			return false
		}
		tk, ok := psu.(device.Tracker)
		if !ok {
			s.printer.Error("%s has no tracking mode", name)
			return false
		}
		if err := tk.SetTracking(rest[0] == "on"); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: tracking %s", name, rest[0])

	case "save", "recall":
		if len(rest) != 1 {
			s.printer.Error("usage: %s %s <slot>", invoked, sub)
			return false
		}
		slot, err := strconv.Atoi(rest[0])
		if err != nil {
			s.printer.Error("%s %s: bad slot %q", invoked, sub, rest[0])
			return false
		}
		slots, ok := psu.(device.StateSlots)
		if !ok {
			s.printer.Error("%s has no state memory", name)
			return false
		}
		if sub == "save" {
			err = slots.SaveState(slot)
		} else {
			err = slots.RecallState(slot)
		}
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: %s slot %d", name, sub, slot)

	default:
		s.printer.Error("unknown %s subcommand %q (try 'help psu')", invoked, sub)
	}
	return false
}
