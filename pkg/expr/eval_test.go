package expr

import (
	"errors"
	"math"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2 ** 10", 1024},
		{"2 ** 3 ** 2", 512}, // right-associative
		{"-2 ** 2", -4},      // unary binds looser than **
		{"10 % 3", 1},
		{"7.5 / 2.5", 3},
		{"1e3 + 1", 1001},
		{".5 * 4", 2},
		{"abs(-3.5)", 3.5},
		{"min(3, 2) * 2", 4},
		{"max(1, 5, 3)", 5},
		{"round(2.5)", 3}, // half away from zero
		{"round(3.14159, 2)", 3.14},
	}
	for _, tt := range tests {
		got, err := Eval(tt.input, nil)
		if err != nil {
			t.Errorf("Eval(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Eval(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	env := Env{
		"v":    3.3,
		"gain": 2.0,
		"m": map[string]float64{
			"vout":  5.01,
			"shunt": 0.1,
		},
	}

	got, err := Eval("v * gain", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-6.6) > 1e-12 {
		t.Errorf("v * gain = %v, want 6.6", got)
	}

	// Quoted and bare subscript keys read the same label.
	for _, in := range []string{`m["vout"] - 5`, `m['vout'] - 5`, `m[vout] - 5`} {
		got, err := Eval(in, env)
		if err != nil {
			t.Fatalf("Eval(%q): unexpected error: %v", in, err)
		}
		if math.Abs(got-0.01) > 1e-9 {
			t.Errorf("Eval(%q) = %v, want 0.01", in, got)
		}
	}

	if _, err := Eval("m + 1", env); err == nil {
		t.Error("expected error using a table in numeric context")
	}
	if _, err := Eval(`m["missing"]`, env); err == nil {
		t.Error("expected error for a missing table entry")
	}
}

func TestEvalRejectsDisallowed(t *testing.T) {
	inputs := []string{
		`__import__("os")`,
		`open("/etc/passwd")`,
		"x.y",
		"1 < 2",
		"a = 3",
		"foo(1)",
		"unknown + 1",
		`"just a string"`,
		"1 if 2 else 3",
	}
	for _, in := range inputs {
		_, err := Eval(in, nil)
		if err == nil {
			t.Errorf("Eval(%q): expected error, got none", in)
			continue
		}
		if !errors.Is(err, ErrDisallowed) {
			t.Errorf("Eval(%q): error %v is not ErrDisallowed", in, err)
		}
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	if _, err := Eval("1 / 0", nil); err == nil {
		t.Error("expected division by zero error")
	}
	if _, err := Eval("1 % 0", nil); err == nil {
		t.Error("expected modulo by zero error")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{3.3, "3.3"},
		{0.01, "0.01"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
