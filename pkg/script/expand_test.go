package script

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func expandAll(t *testing.T, e *Expander, lines []string, vars map[string]string) ([]string, []error) {
	t.Helper()
	return e.Expand(lines, vars)
}

func TestExpandSubstitution(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"psu set 1 ${v} 0.5",
		"dmm read ${missing}",
	}, map[string]string{"v": "3.3"})

	want := []string{
		"psu set 1 3.3 0.5",
		"dmm read ${missing}", // unknown names stay verbatim
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandSet(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"set v 3.3",
		"set v2 ${v} * 2",
		"set label output_a", // not arithmetic, binds the literal text
		"psu set 1 ${v2} 0.5",
		"note ${label}",
	}, nil)

	want := []string{
		"psu set 1 6.6 0.5",
		"note output_a",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandNestedRepeat(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"repeat 2",
		"  repeat 3",
		"    dmm read",
		"  end",
		"end",
	}, nil)

	if len(out) != 6 {
		t.Fatalf("got %d lines, want 6: %v", len(out), out)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandRepeatCountSubstitution(t *testing.T) {
	e := &Expander{}
	out, _ := expandAll(t, e, []string{
		"set n 3",
		"repeat ${n}",
		"dmm read",
		"end",
	}, nil)
	if len(out) != 3 {
		t.Fatalf("got %d lines, want 3: %v", len(out), out)
	}

	_, diags := expandAll(t, e, []string{
		"repeat soon",
		"dmm read",
		"end",
	}, nil)
	if len(diags) != 1 || !errors.Is(diags[0], ErrParse) {
		t.Errorf("non-integer count: diags = %v, want one ErrParse", diags)
	}
}

func TestExpandFor(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"for v 1.0 2.5 5.0",
		"psu set 1 ${v} 0.5",
		"end",
	}, nil)

	want := []string{
		"psu set 1 1.0 0.5",
		"psu set 1 2.5 0.5",
		"psu set 1 5.0 0.5",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandForMultiVar(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"for v,i 1.0,0.1 2.0,0.2",
		"psu set 1 ${v} ${i}",
		"end",
	}, nil)

	want := []string{
		"psu set 1 1.0 0.1",
		"psu set 1 2.0 0.2",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandForArityMismatchContinues(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"for a,b 1,2 3 4,5",
		"cmd ${a} ${b}",
		"end",
	}, nil)

	// The malformed value is skipped; the good values still expand.
	want := []string{
		"cmd 1 2",
		"cmd 4 5",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 1 || !errors.Is(diags[0], ErrArityMismatch) {
		t.Errorf("diags = %v, want one ErrArityMismatch", diags)
	}
}

func TestExpandBlockScopedSet(t *testing.T) {
	e := &Expander{}
	out, _ := expandAll(t, e, []string{
		"set x 1",
		"repeat 2",
		"set x ${x} + 1",
		"cmd ${x}",
		"end",
		"cmd ${x}",
	}, nil)

	// Each iteration starts from a copy of the outer bindings.
	want := []string{"cmd 2", "cmd 2", "cmd 1"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPermissiveEnd(t *testing.T) {
	e := &Expander{}
	// An end closes the innermost open block no matter which keyword opened
	// it, and a stray end is a no-op.
	out, diags := expandAll(t, e, []string{
		"for v 1 2",
		"repeat 2",
		"cmd ${v}",
		"end",
		"end",
		"end",
		"cmd done",
	}, nil)

	want := []string{"cmd 1", "cmd 1", "cmd 2", "cmd 2", "cmd done"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandCall(t *testing.T) {
	store := map[string][]string{
		"inner": {
			"psu set 1 ${v} ${i}",
		},
	}
	e := &Expander{Lookup: func(name string) ([]string, bool) {
		lines, ok := store[name]
		return lines, ok
	}}

	out, diags := expandAll(t, e, []string{
		"set i 0.5",
		"call inner v=3.3",
		"cmd ${v}", // the callee's bindings never leak back
	}, nil)

	want := []string{
		"psu set 1 3.3 0.5",
		"cmd ${v}",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExpandCallNotFound(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"call nothere",
		"cmd after",
	}, nil)

	if len(out) != 1 || out[0] != "cmd after" {
		t.Errorf("output = %v, want the line after the failed call", out)
	}
	if len(diags) != 1 || !errors.Is(diags[0], ErrScriptNotFound) {
		t.Errorf("diags = %v, want one ErrScriptNotFound", diags)
	}
}

func TestExpandCallDepthLimit(t *testing.T) {
	// s0 calls s1 calls s2 ... each level emitting one line.
	store := map[string][]string{}
	for i := 0; i < 12; i++ {
		store[fmt.Sprintf("s%d", i)] = []string{
			fmt.Sprintf("cmd level%d", i),
			fmt.Sprintf("call s%d", i+1),
		}
	}
	e := &Expander{Lookup: func(name string) ([]string, bool) {
		lines, ok := store[name]
		return lines, ok
	}}

	out, diags := expandAll(t, e, []string{"call s0"}, nil)

	// Depth 1..10 expand; the call at depth 11 is refused.
	if len(out) != 10 {
		t.Errorf("got %d lines, want 10: %v", len(out), out)
	}
	foundDepth := false
	for _, d := range diags {
		if errors.Is(d, ErrMaxCallDepth) {
			foundDepth = true
		}
	}
	if !foundDepth {
		t.Errorf("diags = %v, want ErrMaxCallDepth", diags)
	}
}

func TestExpandRecursionStops(t *testing.T) {
	store := map[string][]string{
		"loop": {"cmd tick", "call loop"},
	}
	e := &Expander{Lookup: func(name string) ([]string, bool) {
		lines, ok := store[name]
		return lines, ok
	}}

	out, diags := expandAll(t, e, []string{"call loop"}, nil)
	if len(out) != 10 {
		t.Errorf("got %d lines, want 10", len(out))
	}
	hasDepth := false
	for _, d := range diags {
		if errors.Is(d, ErrMaxCallDepth) {
			hasDepth = true
		}
	}
	if !hasDepth {
		t.Errorf("diags = %v, want ErrMaxCallDepth", diags)
	}
}

func TestExpandCommentsAndBlanks(t *testing.T) {
	e := &Expander{}
	out, diags := expandAll(t, e, []string{
		"# setup",
		"",
		"   ",
		"cmd one",
	}, nil)
	if len(out) != 1 || out[0] != "cmd one" {
		t.Errorf("output = %v", out)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}
