package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrDisallowed marks expressions outside the closed language: syntax the
// grammar rejects, unknown names, or calls to functions not on the builtin
// list.
var ErrDisallowed = errors.New("expr: disallowed expression")

// Env maps variable names to values. A value is either a float64 or a
// map[string]float64 (a table usable only through subscripting).
type Env map[string]any

// Eval parses and evaluates input against env. The result is always a
// number; an expression whose value would be a table is an error.
func Eval(input string, env Env) (float64, error) {
	root, err := parser.ParseString("", input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDisallowed, err)
	}
	return evalExpression(root, env)
}

// FormatNumber renders a result the way the shell prints and stores it:
// shortest representation that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func evalExpression(e *expression, env Env) (float64, error) {
	acc, err := evalMulTerm(e.Left, env)
	if err != nil {
		return 0, err
	}
	for _, op := range e.Rest {
		rhs, err := evalMulTerm(op.Term, env)
		if err != nil {
			return 0, err
		}
		if op.Op == "+" {
			acc += rhs
		} else {
			acc -= rhs
		}
	}
	return acc, nil
}

func evalMulTerm(t *mulTerm, env Env) (float64, error) {
	acc, err := evalUnary(t.Left, env)
	if err != nil {
		return 0, err
	}
	for _, op := range t.Rest {
		rhs, err := evalUnary(op.Term, env)
		if err != nil {
			return 0, err
		}
		switch op.Op {
		case "*":
			acc *= rhs
		case "/":
			if rhs == 0 {
				return 0, errors.New("expr: division by zero")
			}
			acc /= rhs
		case "%":
			if rhs == 0 {
				return 0, errors.New("expr: modulo by zero")
			}
			acc = math.Mod(acc, rhs)
		}
	}
	return acc, nil
}

func evalUnary(u *unary, env Env) (float64, error) {
	v, err := evalPowTerm(u.Operand, env)
	if err != nil {
		return 0, err
	}
	if u.Sign == "-" {
		return -v, nil
	}
	return v, nil
}

func evalPowTerm(p *powTerm, env Env) (float64, error) {
	base, err := evalPrimary(p.Base, env)
	if err != nil {
		return 0, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := evalUnary(p.Exp, env)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func evalPrimary(p *primary, env Env) (float64, error) {
	switch {
	case p.Call != nil:
		return evalCall(p.Call, env)
	case p.Subscript != nil:
		return evalSubscript(p.Subscript, env)
	case p.Number != nil:
		return *p.Number, nil
	case p.Name != nil:
		val, ok := env[*p.Name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown name %q", ErrDisallowed, *p.Name)
		}
		num, ok := val.(float64)
		if !ok {
			return 0, fmt.Errorf("expr: %q is a table, not a number", *p.Name)
		}
		return num, nil
	case p.Paren != nil:
		return evalExpression(p.Paren, env)
	}
	return 0, fmt.Errorf("%w: empty expression", ErrDisallowed)
}

func evalCall(c *call, env Env) (float64, error) {
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := evalExpression(a, env)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch c.Func {
	case "abs":
		if len(args) != 1 {
			return 0, fmt.Errorf("expr: abs takes 1 argument, got %d", len(args))
		}
		return math.Abs(args[0]), nil
	case "min":
		if len(args) < 2 {
			return 0, fmt.Errorf("expr: min takes at least 2 arguments, got %d", len(args))
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	case "max":
		if len(args) < 2 {
			return 0, fmt.Errorf("expr: max takes at least 2 arguments, got %d", len(args))
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	case "round":
		switch len(args) {
		case 1:
			return math.Round(args[0]), nil
		case 2:
			scale := math.Pow(10, math.Trunc(args[1]))
			return math.Round(args[0]*scale) / scale, nil
		default:
			return 0, fmt.Errorf("expr: round takes 1 or 2 arguments, got %d", len(args))
		}
	}
	return 0, fmt.Errorf("%w: call to %q", ErrDisallowed, c.Func)
}

func evalSubscript(s *subscript, env Env) (float64, error) {
	val, ok := env[s.Base]
	if !ok {
		return 0, fmt.Errorf("%w: unknown name %q", ErrDisallowed, s.Base)
	}
	table, ok := val.(map[string]float64)
	if !ok {
		return 0, fmt.Errorf("expr: %q is not subscriptable", s.Base)
	}

	var label string
	switch {
	case s.Key.Str != nil:
		raw := *s.Key.Str
		label = raw[1 : len(raw)-1]
	case s.Key.Name != nil:
		label = *s.Key.Name
	}

	v, ok := table[label]
	if !ok {
		return 0, fmt.Errorf("expr: no entry %q in %s", label, s.Base)
	}
	return v, nil
}
