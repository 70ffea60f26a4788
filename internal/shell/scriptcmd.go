package shell

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// editorHeader is prepended to the temp file handed to $EDITOR and stripped
// on read-back.
var editorHeader = []string{
	"# One command per line. Blank lines and lines starting with # are kept",
	"# in the script and skipped at run time.",
	"# Script syntax: set NAME EXPR, repeat N ... end, for VAR a b c ... end,",
	"# call OTHER_SCRIPT, ${NAME} substitution.",
	"",
}

func (s *Shell) cmdScript(invoked string, args []string) bool {
	if len(args) == 0 {
		s.printer.Error("usage: script <list|show|run|new|edit|rm|import|load|save> ...")
		return false
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]
	switch sub {
	case "list":
		names := s.store.Names()
		if len(names) == 0 {
			s.printer.Warning("no scripts stored")
			return false
		}
		for _, name := range names {
			lines, _ := s.store.Get(name)
			s.printer.Plain("%-20s %d lines", name, len(lines))
		}

	case "show":
		if len(rest) != 1 {
			s.printer.Error("usage: script show <name>")
			return false
		}
		lines, ok := s.store.Get(rest[0])
		if !ok {
			s.printer.Error("script %q not found", rest[0])
			return false
		}
		s.printer.Header("%s:", rest[0])
		for i, line := range lines {
			s.printer.Plain("%3d  %s", i+1, line)
		}

	case "run":
		if len(rest) < 1 {
			s.printer.Error("usage: script run <name> [param=value ...]")
			return false
		}
		params := make(map[string]string)
		for _, a := range rest[1:] {
			key, value, found := strings.Cut(a, "=")
			if !found || key == "" {
				s.printer.Error("script run: parameters take the form name=value, got %q", a)
				return false
			}
			params[key] = value
		}
		return s.RunScript(rest[0], params)

	case "new", "edit":
		if len(rest) != 1 {
			s.printer.Error("usage: script %s <name>", sub)
			return false
		}
		name := rest[0]
		existing, ok := s.store.Get(name)
		if sub == "new" && ok {
			s.printer.Error("script %q already exists (use 'script edit')", name)
			return false
		}
		if sub == "edit" && !ok {
			s.printer.Error("script %q not found (use 'script new')", name)
			return false
		}
		lines, err := s.editLines(existing)
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		s.store.Put(name, lines)
		if err := s.store.Save(); err != nil {
			s.printer.Warning("%v", err)
		}
		s.printer.Success("%s: %d lines", name, len(lines))

	case "rm":
		if len(rest) != 1 {
			s.printer.Error("usage: script rm <name>")
			return false
		}
		if !s.store.Delete(rest[0]) {
			s.printer.Error("script %q not found", rest[0])
			return false
		}
		if err := s.store.Save(); err != nil {
			s.printer.Warning("%v", err)
		}
		s.printer.Success("removed %s", rest[0])

	case "import":
		if len(rest) < 1 || len(rest) > 2 {
			s.printer.Error("usage: script import <path> [name]")
			return false
		}
		name := rest[0]
		if len(rest) == 2 {
			name = rest[1]
		} else {
			name = strings.TrimSuffix(name[strings.LastIndexByte(name, '/')+1:], ".txt")
		}
		n, err := s.store.ImportText(name, rest[0])
		if err != nil {
			s.printer.Error("%v", err)
			return false
		}
		if err := s.store.Save(); err != nil {
			s.printer.Warning("%v", err)
		}
		s.printer.Success("imported %s (%d lines)", name, n)

	case "load":
		path := s.store.Path()
		if len(rest) == 1 {
			path = rest[0]
		}
		if err := s.store.LoadFile(path); err != nil {
			s.printer.Error("%v", err)
			return false
		}
		s.printer.Success("loaded %d scripts from %s", s.store.Len(), path)

	case "save":
		path := s.store.Path()
		if len(rest) == 1 {
			path = rest[0]
		}
		if err := s.store.SaveFile(path); err != nil {
			s.printer.Error("%v", err)
			return false
		}
		s.printer.Success("saved %d scripts to %s", s.store.Len(), path)

	default:
		s.printer.Error("unknown script subcommand %q (try 'help script')", sub)
	}
	return false
}

// editLines round-trips the given lines through $EDITOR and returns the
// edited body with the instruction header removed.
func (s *Shell) editLines(existing []string) ([]string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	f, err := os.CreateTemp("", "otbench-script-*.txt")
	if err != nil {
		return nil, fmt.Errorf("shell: edit: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	body := strings.Join(append(append([]string{}, editorHeader...), existing...), "\n") + "\n"
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return nil, fmt.Errorf("shell: edit: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("shell: edit: %w", err)
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("shell: edit: %s: %w", editor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shell: edit: %w", err)
	}
	return stripEditorHeader(strings.Split(strings.TrimRight(string(data), "\n"), "\n")), nil
}

// stripEditorHeader removes the exact header block if the user left it in
// place.
func stripEditorHeader(lines []string) []string {
	if len(lines) < len(editorHeader) {
		return lines
	}
	for i, h := range editorHeader {
		if lines[i] != h {
			return lines
		}
	}
	return lines[len(editorHeader):]
}
