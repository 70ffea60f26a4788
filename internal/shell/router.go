package shell

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/script"
)

// fanoutRoles are the device roles whose commands accept a channel-position
// "all" token. Meters have no channels to fan out over.
var fanoutRoles = map[string]bool{
	"psu":   true,
	"awg":   true,
	"dds":   true,
	"scope": true,
}

// Dispatch routes one input line: inline repeat blocks first, then
// semicolon chains, then single commands. It reports whether the command
// requested exit.
func (s *Shell) Dispatch(line string) bool {
	tokens, err := script.SplitWords(strings.ReplaceAll(line, ";", " ; "))
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}

	// Inline block form: [prefix ;] repeat N cmd... end [; rest]
	if done, exit := s.dispatchInlineRepeat(tokens); done {
		return exit
	}

	if strings.Contains(line, ";") {
		for _, chunk := range strings.Split(line, ";") {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			if s.dispatchSingle(chunk) {
				return true
			}
		}
		return false
	}

	return s.dispatchSingle(line)
}

// dispatchInlineRepeat handles "repeat N ... end" appearing inline,
// possibly after a semicolon prefix and before a semicolon continuation.
// It reports whether it consumed the line.
func (s *Shell) dispatchInlineRepeat(tokens []string) (handled, exit bool) {
	repeatIdx := -1
	for i, t := range tokens {
		if strings.ToLower(t) == "repeat" {
			repeatIdx = i
			break
		}
	}
	if repeatIdx == -1 || repeatIdx+2 >= len(tokens) {
		return false, false
	}

	endIdx := -1
	for i := repeatIdx + 2; i < len(tokens); i++ {
		if strings.ToLower(tokens[i]) == "end" {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		return false, false
	}

	count, err := strconv.Atoi(tokens[repeatIdx+1])
	if err != nil {
		// Not the block form after all; let normal routing report it.
		return false, false
	}

	// Commands before the repeat run once, in order.
	prefix := tokens[:repeatIdx]
	for _, chunk := range splitChunks(prefix) {
		if s.dispatchSingle(joinTokens(chunk)) {
			return true, true
		}
	}

	body := joinTokens(tokens[repeatIdx+2 : endIdx])
	for i := 0; i < count; i++ {
		if s.Dispatch(body) {
			return true, true
		}
	}

	rest := tokens[endIdx+1:]
	for _, chunk := range splitChunks(rest) {
		if s.dispatchSingle(joinTokens(chunk)) {
			return true, true
		}
	}
	return true, false
}

// splitChunks splits a token list on ";" separators, dropping empties.
func splitChunks(tokens []string) [][]string {
	var out [][]string
	var cur []string
	for _, t := range tokens {
		if t == ";" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// joinTokens rebuilds a command line, re-quoting tokens with spaces.
func joinTokens(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if strings.ContainsAny(t, " \t") || t == "" {
			parts[i] = "\"" + t + "\""
		} else {
			parts[i] = t
		}
	}
	return strings.Join(parts, " ")
}

// dispatchSingle routes one semicolon-free command: same-line repeat, then
// channel fan-out, then direct execution.
func (s *Shell) dispatchSingle(line string) bool {
	tokens, err := script.SplitWords(line)
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}

	// repeat N cmd...  (same-line form, no end)
	if strings.ToLower(tokens[0]) == "repeat" && len(tokens) >= 3 {
		if count, err := strconv.Atoi(tokens[1]); err == nil {
			body := joinTokens(tokens[2:])
			for i := 0; i < count; i++ {
				if s.dispatchSingle(body) {
					return true
				}
			}
			return false
		}
	}

	// Channel-position "all" on a device command fans out over channels.
	// "all" as the command word is the bulk state command, not fan-out.
	head := strings.ToLower(tokens[0])
	base, _ := registry.BaseName(head)
	if fanoutRoles[base] {
		allIdx := -1
		for i := 1; i < len(tokens); i++ {
			if strings.ToLower(tokens[i]) == "all" {
				allIdx = i
				break
			}
		}
		if allIdx != -1 {
			_, dev, ok := s.resolveFor(head)
			if !ok {
				return false
			}
			channels := dev.Channels()
			if len(channels) > 0 {
				for _, ch := range channels {
					fanned := make([]string, len(tokens))
					copy(fanned, tokens)
					fanned[allIdx] = strconv.Itoa(ch)
					if s.exec(joinTokens(fanned)) {
						return true
					}
				}
				return false
			}
		}
	}

	return s.exec(line)
}

// exec runs one concrete command.
func (s *Shell) exec(line string) bool {
	tokens, err := script.SplitWords(line)
	if err != nil {
		s.printer.Error("%v", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}

	head := strings.ToLower(tokens[0])
	if cmd, ok := s.commands[head]; ok {
		return cmd.run(s, head, tokens[1:])
	}

	// Indexed device names (psu2, awg3) run the role's command against
	// that specific device.
	base, indexed := registry.BaseName(head)
	if indexed {
		if cmd, ok := s.commands[base]; ok {
			if !s.reg.Has(head) {
				s.printer.Error("no device named %q connected", head)
				return false
			}
			return cmd.run(s, head, tokens[1:])
		}
	}

	s.printer.Error("unknown command: %s (try 'help')", tokens[0])
	return false
}

// resolveFor maps the invoked command word to a device: an exact
// registered name when indexed (psu2) or the legacy dds name, otherwise
// role resolution, which fails closed on ambiguity.
func (s *Shell) resolveFor(invoked string) (string, device.Device, bool) {
	invoked = strings.ToLower(invoked)
	_, indexed := registry.BaseName(invoked)

	if indexed {
		dev, err := s.reg.Get(invoked)
		if err != nil {
			s.printer.Error("%v", err)
			return "", nil, false
		}
		return invoked, dev, true
	}

	name, err := s.reg.ResolveRole(invoked)
	if invoked == "dds" && errors.Is(err, registry.ErrDeviceNotFound) {
		// Legacy alias: a bench with only an awg still answers dds commands.
		name, err = s.reg.ResolveRole("awg")
	}
	if err != nil {
		s.printer.Warning("%v", err)
		return "", nil, false
	}
	dev, err := s.reg.Get(name)
	if err != nil {
		s.printer.Error("%v", err)
		return "", nil, false
	}
	return name, dev, true
}
