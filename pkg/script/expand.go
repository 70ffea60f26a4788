package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/expr"
)

// MaxCallDepth bounds nested script calls. Depth 0 is the top-level script;
// a chain of ten nested calls still expands, the eleventh does not.
const MaxCallDepth = 10

// Expander flattens parsed scripts into executable command lines. Lookup
// resolves the source lines of a script named by call; a nil Lookup makes
// every call fail with ErrScriptNotFound.
type Expander struct {
	Lookup func(name string) ([]string, bool)
}

// Expand parses lines and flattens them with the given initial variable
// bindings. It returns the expanded command lines and any non-fatal
// diagnostics; a diagnosed construct contributes nothing to the output, but
// expansion of the rest continues.
func (e *Expander) Expand(lines []string, vars map[string]string) ([]string, []error) {
	nodes, diags := Parse(lines)
	out, more := e.expand(nodes, copyVars(vars), 0)
	return out, append(diags, more...)
}

// Substitute replaces every ${name} whose name is bound in vars. Unknown
// references are left verbatim.
func Substitute(text string, vars map[string]string) string {
	for k, v := range vars {
		text = strings.ReplaceAll(text, "${"+k+"}", v)
	}
	return text
}

func (e *Expander) expand(nodes []Node, vars map[string]string, depth int) ([]string, []error) {
	if depth > MaxCallDepth {
		return nil, []error{fmt.Errorf("%w (limit %d)", ErrMaxCallDepth, MaxCallDepth)}
	}

	var (
		out   []string
		diags []error
	)

	for _, n := range nodes {
		switch n := n.(type) {
		case Command:
			out = append(out, Substitute(n.Text, vars))

		case Set:
			text := Substitute(n.Expr, vars)
			if val, err := expr.Eval(text, numericEnv(vars)); err == nil {
				vars[n.Name] = expr.FormatNumber(val)
			} else {
				// Not arithmetic: bind the substituted text itself.
				vars[n.Name] = text
			}

		case Repeat:
			countText := Substitute(n.Count, vars)
			count, err := strconv.Atoi(countText)
			if err != nil {
				diags = append(diags, fmt.Errorf("%w: repeat: expected integer count, got %q", ErrParse, countText))
				continue
			}
			for i := 0; i < count; i++ {
				lines, more := e.expand(n.Body, copyVars(vars), depth)
				out = append(out, lines...)
				diags = append(diags, more...)
			}

		case For:
			for _, value := range n.Values {
				local := copyVars(vars)
				if len(n.Vars) == 1 {
					local[n.Vars[0]] = Substitute(value, vars)
				} else {
					parts := strings.Split(value, ",")
					if len(parts) != len(n.Vars) {
						diags = append(diags, fmt.Errorf("%w: for %s: value %q has %d parts, want %d",
							ErrArityMismatch, strings.Join(n.Vars, ","), value, len(parts), len(n.Vars)))
						continue
					}
					for i, name := range n.Vars {
						local[name] = Substitute(parts[i], vars)
					}
				}
				lines, more := e.expand(n.Body, local, depth)
				out = append(out, lines...)
				diags = append(diags, more...)
			}

		case Call:
			var (
				src []string
				ok  bool
			)
			if e.Lookup != nil {
				src, ok = e.Lookup(n.Script)
			}
			if !ok {
				diags = append(diags, fmt.Errorf("%w: %q", ErrScriptNotFound, n.Script))
				continue
			}
			child := copyVars(vars)
			for _, p := range n.Params {
				child[p.Key] = Substitute(p.Value, vars)
			}
			body, parseDiags := Parse(src)
			diags = append(diags, parseDiags...)
			lines, more := e.expand(body, child, depth+1)
			out = append(out, lines...)
			diags = append(diags, more...)
		}
	}

	return out, diags
}

func copyVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// numericEnv exposes the numeric subset of the string bindings to the
// expression evaluator.
func numericEnv(vars map[string]string) expr.Env {
	env := make(expr.Env, len(vars))
	for k, v := range vars {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			env[k] = f
		}
	}
	return env
}
