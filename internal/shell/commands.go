package shell

import (
	"context"
	"strconv"
	"strings"
)

// command is one routable shell command.
type command struct {
	name    string
	group   string
	summary string
	usage   string
	run     func(s *Shell, invoked string, args []string) bool
}

func (s *Shell) register(cmds ...*command) {
	if s.commands == nil {
		s.commands = make(map[string]*command)
	}
	for _, c := range cmds {
		s.commands[c.name] = c
		s.order = append(s.order, c.name)
	}
}

// alias routes another name to an existing command's handler.
func (s *Shell) alias(name, target string) {
	c := *s.commands[target]
	c.name = name
	s.commands[name] = &c
}

func (s *Shell) registerCommands() {
	s.register(
		&command{"help", "general", "show this help", "help [command]", (*Shell).cmdHelp},
		&command{"scan", "general", "rescan for instruments", "scan", (*Shell).cmdScan},
		&command{"list", "general", "list connected instruments", "list", (*Shell).cmdList},
		&command{"use", "general", "select a default instrument", "use <name>|none", (*Shell).cmdUse},
		&command{"status", "general", "show instrument status", "status", (*Shell).cmdStatus},
		&command{"idn", "general", "query instrument identity", "idn [name]", (*Shell).cmdIdn},
		&command{"raw", "general", "send a raw command (query if it ends with ?)", "raw <name> <cmd...>", (*Shell).cmdRaw},
		&command{"sleep", "general", "pause for a number of seconds", "sleep <seconds>", (*Shell).cmdSleep},
		&command{"all", "general", "apply a state to every instrument", "all <safe|on|off|reset>", (*Shell).cmdAll},
		&command{"state", "general", "show or set instrument state", "state [<name> <safe|on|off|reset>]", (*Shell).cmdState},
		&command{"close", "general", "disconnect one instrument", "close <name>", (*Shell).cmdClose},
		&command{"exit", "general", "park instruments and leave", "exit", (*Shell).cmdExit},

		&command{"psu", "devices", "power supply control", "psu <on|off|set|meas|get|track|save|recall> ...", (*Shell).cmdPSU},
		&command{"awg", "devices", "waveform generator control", "awg <chan|wave|freq|amp|offset|duty|phase|sync> ...", (*Shell).cmdAWG},
		&command{"dmm", "devices", "multimeter control", "dmm <config|read|fetch|meas|read_store|meas_store|beep|display|text|text_loop|cleartext|modes> ...", (*Shell).cmdDMM},
		&command{"scope", "devices", "oscilloscope control", "scope <autoset|run|stop|single|chan|coupling|probe|hscale|hpos|hmove|vscale|vpos|vmove|trigger|measure|measure_store|measure_delay|save> ...", (*Shell).cmdScope},

		&command{"script", "scripting", "store, edit and run scripts", "script <list|show|run|new|edit|rm|import|load|save> ...", (*Shell).cmdScript},
		&command{"repeat", "scripting", "repeat a command", "repeat <n> <cmd...> | repeat <n> ... end", (*Shell).cmdRepeatHelp},
		&command{"log", "measurements", "print, save or clear the measurement log", "log [print|save <path> [csv|txt]|clear]", (*Shell).cmdLog},
		&command{"calc", "measurements", "compute and log a value from measurements", "calc <label> <expr> [unit=...]", (*Shell).cmdCalc},
	)
	s.alias("quit", "exit")
	s.alias("dds", "awg")
	s.alias("wait", "sleep")
}

func (s *Shell) cmdHelp(invoked string, args []string) bool {
	if len(args) > 0 {
		name := strings.ToLower(args[0])
		c, ok := s.commands[name]
		if !ok {
			s.printer.Error("unknown command: %s", args[0])
			return false
		}
		s.printer.Plain("%s - %s", c.name, c.summary)
		s.printer.Plain("usage: %s", c.usage)
		return false
	}

	groups := []string{"general", "devices", "scripting", "measurements"}
	for _, g := range groups {
		s.printer.Header("%s:", g)
		for _, name := range s.order {
			c := s.commands[name]
			if c.group != g {
				continue
			}
			s.printer.Plain("  %-8s %s", c.name, c.summary)
		}
	}
	s.printer.Plain("")
	s.printer.Plain("chaining: cmd1 ; cmd2    repetition: repeat 3 dmm read")
	s.printer.Plain("channel fan-out: psu set all 3.3 0.5    indexed devices: psu2, awg2")
	return false
}

func (s *Shell) cmdScan(invoked string, args []string) bool {
	if s.rescan == nil {
		s.printer.Warning("rescan not available in this session")
		return false
	}
	s.printer.Info("scanning for instruments...")
	if err := s.rescan(context.Background(), s.reg); err != nil {
		s.printer.Error("scan failed: %v", err)
		return false
	}
	return s.cmdList(invoked, nil)
}

func (s *Shell) cmdList(invoked string, args []string) bool {
	names := s.reg.Names()
	if len(names) == 0 {
		s.printer.Warning("no instruments connected (try 'scan')")
		return false
	}
	active := s.reg.Active()
	for _, name := range names {
		dev, err := s.reg.Get(name)
		if err != nil {
			continue
		}
		info := dev.Info()
		marker := " "
		if name == active {
			marker = "*"
		}
		s.printer.Plain("%s %-8s %-6s %-12s %s", marker, name, info.Kind, info.Model, info.Resource)
	}
	return false
}

func (s *Shell) cmdUse(invoked string, args []string) bool {
	if len(args) != 1 {
		s.printer.Error("usage: use <name>|none")
		return false
	}
	if strings.ToLower(args[0]) == "none" {
		_ = s.reg.SetActive("")
		s.printer.Success("selection cleared")
		return false
	}
	if err := s.reg.SetActive(strings.ToLower(args[0])); err != nil {
		s.printer.Error("%v", err)
		return false
	}
	s.printer.Success("using %s", args[0])
	return false
}

// targetFor picks the device for idn/raw: an explicit name argument, then
// the active selection.
func (s *Shell) targetFor(args []string) (string, []string, bool) {
	if len(args) > 0 {
		name := strings.ToLower(args[0])
		if s.reg.Has(name) {
			return name, args[1:], true
		}
		if resolved, err := s.reg.ResolveRole(name); err == nil {
			return resolved, args[1:], true
		}
	}
	if active := s.reg.Active(); active != "" {
		return active, args, true
	}
	return "", args, false
}

func (s *Shell) cmdIdn(invoked string, args []string) bool {
	name, _, ok := s.targetFor(args)
	if !ok {
		s.printer.Error("no device selected (use <name>, or: idn <name>)")
		return false
	}
	dev, err := s.reg.Get(name)
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	idn, err := dev.Query("*IDN?")
	if err != nil {
		s.printer.Error("%s: %v", name, err)
		return false
	}
	s.printer.Cyan("%s: %s", name, idn)
	return false
}

func (s *Shell) cmdRaw(invoked string, args []string) bool {
	name, rest, ok := s.targetFor(args)
	if !ok || len(rest) == 0 {
		s.printer.Error("usage: raw <name> <cmd...>")
		return false
	}
	dev, err := s.reg.Get(name)
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	cmd := strings.Join(rest, " ")
	if strings.HasSuffix(cmd, "?") {
		resp, err := dev.Query(cmd)
		if err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Cyan("%s", resp)
		return false
	}
	if err := dev.Send(cmd); err != nil {
		s.printer.Error("%s: %v", name, err)
	}
	return false
}

func (s *Shell) cmdSleep(invoked string, args []string) bool {
	if len(args) != 1 {
		s.printer.Error("usage: %s <seconds>", invoked)
		return false
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil || secs < 0 {
		s.printer.Error("%s: expected a non-negative number of seconds", invoked)
		return false
	}
	s.sleepFor(secondsToDuration(secs))
	return false
}

func (s *Shell) cmdAll(invoked string, args []string) bool {
	if len(args) != 1 {
		s.printer.Error("usage: all <safe|on|off|reset>")
		return false
	}
	action, err := parseStateAction(strings.ToLower(args[0]))
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	s.applyAll(action)
	return false
}

func (s *Shell) cmdState(invoked string, args []string) bool {
	switch len(args) {
	case 0:
		s.printer.Plain("shell: %s", s.life.current())
		return s.cmdList(invoked, nil)
	case 2:
		name := strings.ToLower(args[0])
		dev, err := s.reg.Get(name)
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		action, err := parseStateAction(strings.ToLower(args[1]))
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		if err := applyDevice(dev, action); err != nil {
			s.printer.Error("%s: %v", name, err)
			return false
		}
		s.printer.Success("%s: %s", name, action)
		return false
	default:
		s.printer.Error("usage: state [<name> <safe|on|off|reset>]")
		return false
	}
}

func (s *Shell) cmdClose(invoked string, args []string) bool {
	if len(args) != 1 {
		s.printer.Error("usage: close <name>")
		return false
	}
	name := strings.ToLower(args[0])
	dev, err := s.reg.Get(name)
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	if err := applyDevice(dev, actionSafe); err != nil {
		s.printer.Warning("%s: %v", name, err)
	}
	if err := dev.Close(); err != nil {
		s.printer.Warning("%s: %v", name, err)
	}
	if err := s.reg.Remove(name); err != nil {
		s.printer.Error("%v", err)
		return false
	}
	s.printer.Success("closed %s", name)
	return false
}

func (s *Shell) cmdExit(invoked string, args []string) bool {
	return true
}

func (s *Shell) cmdRepeatHelp(invoked string, args []string) bool {
	// A bare repeat reaching the command table means the router could not
	// parse it (bad count or missing body).
	s.printer.Error("usage: repeat <n> <cmd...>  or  repeat <n> cmd1 ; cmd2 end")
	return false
}

func (s *Shell) cmdStatus(invoked string, args []string) bool {
	names := s.reg.Names()
	if len(names) == 0 {
		s.printer.Warning("no instruments connected")
		return false
	}
	for _, name := range names {
		dev, err := s.reg.Get(name)
		if err != nil {
			continue
		}
		idn, err := dev.Query("*IDN?")
		if err != nil {
			s.printer.Error("%-8s %v", name, err)
			continue
		}
		s.printer.Plain("%-8s %s", name, idn)
	}
	return false
}
