package shell

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
)

// stateAction is one bulk state transition.
type stateAction string

const (
	actionSafe  stateAction = "safe"
	actionOn    stateAction = "on"
	actionOff   stateAction = "off"
	actionReset stateAction = "reset"
)

func parseStateAction(tok string) (stateAction, error) {
	switch stateAction(tok) {
	case actionSafe, actionOn, actionOff, actionReset:
		return stateAction(tok), nil
	}
	return "", fmt.Errorf("unknown state action %q (safe, on, off, reset)", tok)
}

// applyDevice applies one state action to one device through the
// capability adapter.
func applyDevice(dev device.Device, action stateAction) error {
	switch action {
	case actionSafe:
		return device.SafeState(dev)
	case actionOn:
		return device.PowerOn(dev)
	case actionOff:
		return device.PowerOff(dev)
	case actionReset:
		return dev.Reset()
	}
	return fmt.Errorf("unknown state action %q", action)
}

// applyAll applies a state action to every registered device. A failing
// device is reported and skipped; the rest still transition.
func (s *Shell) applyAll(action stateAction) {
	for _, name := range s.reg.Names() {
		dev, err := s.reg.Get(name)
		if err != nil {
			continue // removed mid-iteration
		}
		if err := applyDevice(dev, action); err != nil {
			s.printer.Error("%s: %v", name, err)
			s.slog.Warn("state action failed", "device", name, "action", string(action), "error", err)
			continue
		}
		s.printer.Success("%s: %s", name, action)
	}
}
