package shell

import (
	"strings"
	"sync"
	"time"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
)

// tickInterval caps the display refresh rate.
const tickInterval = 250 * time.Millisecond

// displayTicker scrolls a text banner across a meter's front panel. Frames
// advance from tick(), which the shell calls between commands and while
// sleeping, so the animation costs nothing when the shell is idle at the
// prompt.
type displayTicker struct {
	mu     sync.Mutex
	frames []string
	index  int
	last   time.Time
	active bool
}

// start builds the frame ring for msg over a window of width characters.
func (t *displayTicker) start(msg string, width int) {
	if width <= 0 {
		width = 12
	}
	padded := msg + strings.Repeat(" ", width)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = t.frames[:0]
	for i := 0; i < len(padded); i++ {
		frame := padded[i:] + padded[:i]
		if len(frame) > width {
			frame = frame[:width]
		}
		t.frames = append(t.frames, frame)
	}
	t.index = 0
	t.last = time.Time{}
	t.active = true
}

// stop halts the animation.
func (t *displayTicker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
}

// next returns the next frame when the ticker is active and the refresh
// interval elapsed.
func (t *displayTicker) next() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active || len(t.frames) == 0 {
		return "", false
	}
	now := time.Now()
	if now.Sub(t.last) < tickInterval {
		return "", false
	}
	t.last = now
	frame := t.frames[t.index]
	t.index = (t.index + 1) % len(t.frames)
	return frame, true
}

// tick advances the banner one frame if due, writing it to the meter's
// display. A display failure stops the animation instead of spamming
// errors every tick.
func (s *Shell) tick() {
	frame, ok := s.ticker.next()
	if !ok {
		return
	}

	name, err := s.reg.ResolveRole("dmm")
	if err != nil {
		s.ticker.stop()
		return
	}
	dev, err := s.reg.Get(name)
	if err != nil {
		s.ticker.stop()
		return
	}
	disp, ok := dev.(device.TextDisplay)
	if !ok {
		s.ticker.stop()
		s.printer.Warning("%s has no text display", name)
		return
	}
	if err := disp.DisplayText(frame); err != nil {
		s.ticker.stop()
		s.printer.Error("display update failed: %v", err)
	}
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// sleepFor blocks for d while keeping the display animation running.
func (s *Shell) sleepFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		nap := 50 * time.Millisecond
		if remaining < nap {
			nap = remaining
		}
		time.Sleep(nap)
		s.tick()
	}
}
