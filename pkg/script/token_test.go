package script

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"psu set 1 3.3 0.5", []string{"psu", "set", "1", "3.3", "0.5"}},
		{`dmm text "HELLO WORLD"`, []string{"dmm", "text", "HELLO WORLD"}},
		{`dmm text 'single quoted'`, []string{"dmm", "text", "single quoted"}},
		{`raw psu "MEAS:VOLT? P6V"`, []string{"raw", "psu", "MEAS:VOLT? P6V"}},
		{`a b\ c`, []string{"a", "b c"}},
		{"  spaced\tout  ", []string{"spaced", "out"}},
		{"", nil},
		{`empty ""`, []string{"empty", ""}},
	}
	for _, tt := range tests {
		got, err := SplitWords(tt.in)
		if err != nil {
			t.Errorf("SplitWords(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitWords(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSplitWordsErrors(t *testing.T) {
	for _, in := range []string{`unterminated "quote`, `unterminated 'quote`, `trailing \`} {
		_, err := SplitWords(in)
		if !errors.Is(err, ErrParse) {
			t.Errorf("SplitWords(%q): err = %v, want ErrParse", in, err)
		}
	}
}
