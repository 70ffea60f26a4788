package shell

import (
	"errors"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/expr"
)

func (s *Shell) cmdLog(invoked string, args []string) bool {
	sub := "print"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "print", "show":
		if s.log.Len() == 0 {
			s.printer.Warning("measurement log is empty")
			return false
		}
		var sb strings.Builder
		if err := s.log.WriteText(&sb); err != nil {
			s.printer.Error("%v", err)
			return false
		}
		for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
			s.printer.Plain("%s", line)
		}

	case "save":
		if len(args) < 2 || len(args) > 3 {
			s.printer.Error("usage: log save <path> [csv|txt]")
			return false
		}
		format := ""
		if len(args) == 3 {
			format = strings.ToLower(args[2])
		}
		if err := s.log.SaveFile(args[1], format); err != nil {
			s.printer.Error("%v", err)
			return false
		}
		s.printer.Success("log saved to %s (%d records)", args[1], s.log.Len())

	case "clear":
		s.log.Clear()
		s.printer.Success("measurement log cleared")

	default:
		s.printer.Error("usage: log [print|save <path> [csv|txt]|clear]")
	}
	return false
}

// calcEnv exposes the measurement log to the evaluator: the label table as
// m, and the most recent record's value as last.
func (s *Shell) calcEnv() expr.Env {
	env := expr.Env{"m": s.log.AsMap()}
	if rec, ok := s.log.Last(); ok {
		env["last"] = rec.Value
	}
	return env
}

func (s *Shell) cmdCalc(invoked string, args []string) bool {
	if len(args) < 2 {
		s.printer.Error("usage: calc <label> <expr> [unit=...]  (m[\"label\"] reads the log, last is the latest record)")
		return false
	}

	label := args[0]
	unit := ""
	var parts []string
	for _, a := range args[1:] {
		if strings.HasPrefix(strings.ToLower(a), "unit=") {
			unit = a[len("unit="):]
			continue
		}
		parts = append(parts, a)
	}
	if len(parts) == 0 {
		s.printer.Error("calc: expected an expression")
		return false
	}

	value, err := expr.Eval(strings.Join(parts, " "), s.calcEnv())
	if err != nil {
		if errors.Is(err, expr.ErrDisallowed) {
			s.printer.Error("%v", err)
		} else {
			s.printer.Error("calc: %v", err)
		}
		return false
	}
	s.log.Add(label, value, unit, "calc")
	s.printer.Cyan("%s = %s", label, expr.FormatNumber(value))
	return false
}
