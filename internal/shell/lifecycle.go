package shell

import "sync"

// Phase is the shell's shutdown state.
type Phase int

const (
	// PhaseRunning accepts commands.
	PhaseRunning Phase = iota
	// PhaseShuttingDown is parking instruments; further shutdown requests
	// are no-ops.
	PhaseShuttingDown
	// PhaseTerminated has released every device.
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseShuttingDown:
		return "shutting down"
	case PhaseTerminated:
		return "terminated"
	}
	return "unknown"
}

// lifecycle serializes shutdown so that the exit command, EOF, a signal
// handler and deferred cleanup can all request it and the instruments are
// parked exactly once.
type lifecycle struct {
	mu    sync.Mutex
	phase Phase
}

// begin moves running to shutting down. It reports false when shutdown
// already started or finished.
func (l *lifecycle) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseRunning {
		return false
	}
	l.phase = PhaseShuttingDown
	return true
}

// finish marks shutdown complete.
func (l *lifecycle) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phase = PhaseTerminated
}

// current returns the phase.
func (l *lifecycle) current() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}
