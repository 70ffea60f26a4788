package device

import "fmt"

// Capability interfaces. Drivers implement the subset their hardware has;
// callers probe with type assertions through the adapter functions below
// instead of guessing at method names.

// OutputGate is a single master output switch (bench PSU style).
type OutputGate interface {
	EnableOutput(on bool) error
}

// ChannelGate switches one output channel at a time.
type ChannelGate interface {
	EnableChannel(ch int, on bool) error
}

// BulkGate turns every output off in one operation.
type BulkGate interface {
	DisableAllOutputs() error
}

// BulkEnabler turns every output on in one operation.
type BulkEnabler interface {
	EnableAllOutputs() error
}

// Acquirer controls oscilloscope acquisition.
type Acquirer interface {
	Run() error
	Stop() error
	Single() error
}

// TextDisplay shows a message on the instrument's front panel.
type TextDisplay interface {
	DisplayText(msg string) error
	ClearDisplay() error
}

// DisableAll drives every output of dev off, preferring the most specific
// capability: a bulk switch, then per-channel switching, then the master
// gate. A device with none of the three is not supported.
func DisableAll(dev Device) error {
	switch d := dev.(type) {
	case BulkGate:
		return d.DisableAllOutputs()
	case ChannelGate:
		for _, ch := range dev.Channels() {
			if err := d.EnableChannel(ch, false); err != nil {
				return err
			}
		}
		return nil
	case OutputGate:
		return d.EnableOutput(false)
	}
	return fmt.Errorf("%w: %s has no output switching", ErrNotSupported, dev.Info().Model)
}

// EnableAll drives every output of dev on, with the same fallback order as
// DisableAll.
func EnableAll(dev Device) error {
	switch d := dev.(type) {
	case BulkEnabler:
		return d.EnableAllOutputs()
	case ChannelGate:
		for _, ch := range dev.Channels() {
			if err := d.EnableChannel(ch, true); err != nil {
				return err
			}
		}
		return nil
	case OutputGate:
		return d.EnableOutput(true)
	}
	return fmt.Errorf("%w: %s has no output switching", ErrNotSupported, dev.Info().Model)
}

// SafeState puts dev into its quiescent state: sources stop sourcing,
// scopes stop acquiring, meters reset.
func SafeState(dev Device) error {
	switch dev.Info().Kind {
	case KindPSU, KindAWG:
		return DisableAll(dev)
	case KindScope:
		if a, ok := dev.(Acquirer); ok {
			if err := a.Stop(); err != nil {
				return err
			}
		}
		return DisableAll(dev)
	case KindDMM:
		return dev.Reset()
	}
	return DisableAll(dev)
}

// PowerOn enables outputs on sources. Meters have nothing to switch on.
func PowerOn(dev Device) error {
	if dev.Info().Kind == KindDMM {
		return nil
	}
	return EnableAll(dev)
}

// PowerOff disables outputs on sources and stops scope acquisition. Meters
// have nothing to switch off.
func PowerOff(dev Device) error {
	switch dev.Info().Kind {
	case KindDMM:
		return nil
	case KindScope:
		if a, ok := dev.(Acquirer); ok {
			if err := a.Stop(); err != nil {
				return err
			}
		}
	}
	return DisableAll(dev)
}
