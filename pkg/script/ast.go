package script

import (
	"fmt"
	"strings"
)

// Node is one structural element of a parsed script.
type Node interface{ node() }

// Command is a plain command line, passed through after variable
// substitution.
type Command struct {
	Text string
}

// Set binds a variable to the result of an expression (or to the literal
// text when the expression does not evaluate).
type Set struct {
	Name string
	Expr string
}

// Call expands another stored script with parameter bindings.
type Call struct {
	Script string
	Params []Param
}

// Param is one key=value binding on a call line.
type Param struct {
	Key   string
	Value string
}

// Repeat expands its body a fixed number of times.
type Repeat struct {
	Count string // raw token, substituted then parsed at expansion time
	Body  []Node
}

// For expands its body once per value, binding one or more comma-joined
// variables.
type For struct {
	Vars   []string
	Values []string
	Body   []Node
}

func (Command) node() {}
func (Set) node()     {}
func (Call) node()    {}
func (Repeat) node()  {}
func (For) node()     {}

// Parse turns script lines into nodes. Problems are reported as diagnostics;
// the offending line is skipped and parsing continues. Blank lines and
// #-comments are dropped. A stray end with no open block is ignored.
func Parse(lines []string) ([]Node, []error) {
	var (
		nodes []Node
		diags []error
	)

	i := 0
	for i < len(lines) {
		raw := strings.TrimSpace(lines[i])
		i++
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		tokens, err := SplitWords(raw)
		if err != nil {
			diags = append(diags, fmt.Errorf("%w: %q: %v", ErrParse, raw, err))
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		switch strings.ToLower(tokens[0]) {
		case "set":
			if len(tokens) < 3 {
				diags = append(diags, fmt.Errorf("%w: set needs a name and an expression: %q", ErrParse, raw))
				continue
			}
			nodes = append(nodes, Set{Name: tokens[1], Expr: strings.Join(tokens[2:], " ")})

		case "call":
			if len(tokens) < 2 {
				diags = append(diags, fmt.Errorf("%w: call needs a script name: %q", ErrParse, raw))
				continue
			}
			c := Call{Script: tokens[1]}
			for _, t := range tokens[2:] {
				if k, v, ok := strings.Cut(t, "="); ok {
					c.Params = append(c.Params, Param{Key: k, Value: v})
				}
			}
			nodes = append(nodes, c)

		case "repeat":
			if len(tokens) < 2 {
				diags = append(diags, fmt.Errorf("%w: repeat needs a count: %q", ErrParse, raw))
				continue
			}
			block, next := collectBlock(lines, i)
			i = next
			body, bodyDiags := Parse(block)
			diags = append(diags, bodyDiags...)
			nodes = append(nodes, Repeat{Count: tokens[1], Body: body})

		case "for":
			if len(tokens) < 3 {
				diags = append(diags, fmt.Errorf("%w: for needs variables and values: %q", ErrParse, raw))
				continue
			}
			var vars []string
			for _, v := range strings.Split(tokens[1], ",") {
				if v != "" {
					vars = append(vars, v)
				}
			}
			if len(vars) == 0 {
				diags = append(diags, fmt.Errorf("%w: for needs at least one variable: %q", ErrParse, raw))
				continue
			}
			block, next := collectBlock(lines, i)
			i = next
			body, bodyDiags := Parse(block)
			diags = append(diags, bodyDiags...)
			nodes = append(nodes, For{Vars: vars, Values: tokens[2:], Body: body})

		case "end":
			// Tolerated outside a block.

		default:
			nodes = append(nodes, Command{Text: raw})
		}
	}

	return nodes, diags
}

// collectBlock gathers the raw lines of a repeat/for body starting at start,
// up to the end that closes the innermost open block. Any keyword's end
// closes any block. A block left open runs to the end of the script.
func collectBlock(lines []string, start int) (block []string, next int) {
	depth := 0
	i := start
	for i < len(lines) {
		raw := strings.TrimSpace(lines[i])
		i++

		head := ""
		if tokens, err := SplitWords(raw); err == nil && len(tokens) > 0 {
			head = strings.ToLower(tokens[0])
		}

		switch head {
		case "repeat", "for":
			depth++
		case "end":
			if depth == 0 {
				return block, i
			}
			depth--
		}
		block = append(block, lines[i-1])
	}
	return block, i
}
