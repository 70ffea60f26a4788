// Package term provides colored, operator-facing terminal output. ANSI codes
// are emitted only when the destination is a real terminal.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiBlue   = "\033[94m"
	ansiCyan   = "\033[96m"
	ansiBold   = "\033[1m"
)

// Printer writes tagged status lines ([INFO], [OK], [WARN], [ERROR]) to a
// single destination. Safe for concurrent use.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewPrinter builds a Printer for w. Color is enabled when w is a TTY.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, color: color}
}

// NewPlainPrinter builds a Printer with color forced off, for tests and
// redirected output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *Printer) line(code, tag, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.w, p.paint(code, tag+msg))
}

// Info prints an informational status line.
func (p *Printer) Info(format string, args ...any) {
	p.line(ansiBlue, "[INFO] ", format, args...)
}

// Success prints a success status line.
func (p *Printer) Success(format string, args ...any) {
	p.line(ansiGreen, "[OK] ", format, args...)
}

// Warning prints a warning status line.
func (p *Printer) Warning(format string, args ...any) {
	p.line(ansiYellow, "[WARN] ", format, args...)
}

// Error prints an error status line.
func (p *Printer) Error(format string, args ...any) {
	p.line(ansiRed, "[ERROR] ", format, args...)
}

// Header prints a bold section header.
func (p *Printer) Header(format string, args ...any) {
	p.line(ansiBold, "", format, args...)
}

// Cyan prints a highlighted value line, used for measurement results.
func (p *Printer) Cyan(format string, args ...any) {
	p.line(ansiCyan, "", format, args...)
}

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}
